package apperror

import "net/http"

// Sentinels for errors.Is checks; matching is by Code only.
var (
	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrRemoteService = New(
		CodeRemoteService,
		"The tax table service request failed",
		http.StatusBadGateway,
	)

	ErrSchema = New(
		CodeSchema,
		"The tax table service returned an unexpected response",
		http.StatusBadGateway,
	)

	ErrSettingsFile = New(
		CodeSettingsFile,
		"The payslip settings file could not be used",
		http.StatusInternalServerError,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
)
