// Package apperror defines the error kinds shared by the tax service, the payslip
// accountant and the outer CLI/HTTP surfaces.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string // Error code (e.g., INVALID_INPUT)
	Message    string // User-friendly message
	HTTPStatus int    // HTTP status code
	Err        error  // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// InvalidInput builds an INVALID_INPUT error with a formatted message.
func InvalidInput(format string, args ...interface{}) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

// RemoteService wraps a failure talking to the tax table service.
func RemoteService(err error, message string) *AppError {
	return Wrap(err, CodeRemoteService, message, http.StatusBadGateway)
}

// Schema builds a SCHEMA error for a response missing an expected shape.
func Schema(format string, args ...interface{}) *AppError {
	return New(CodeSchema, fmt.Sprintf(format, args...), http.StatusBadGateway)
}

// SettingsFile wraps a failure reading or writing the payslip settings file.
func SettingsFile(err error, message string) *AppError {
	return Wrap(err, CodeSettingsFile, message, http.StatusInternalServerError)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
