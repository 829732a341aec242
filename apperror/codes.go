package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"

	// Server and upstream errors (5xx)
	CodeRemoteService = "REMOTE_SERVICE"
	CodeSchema        = "SCHEMA"
	CodeSettingsFile  = "SETTINGS_FILE"
	CodeInternalError = "INTERNAL_ERROR"
)
