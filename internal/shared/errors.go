package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an AppError.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_FAILED"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeUpstream   ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
)

// AppError is an error carrying a code that transports map to a response.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error code.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError reports bad user input.
func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(format string, args ...any) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewUpstreamError wraps a failure of an external service.
func NewUpstreamError(service string, cause error) *AppError {
	return &AppError{Code: CodeUpstream, Message: service + " request failed", Cause: cause}
}

// AsAppError converts any error into an AppError, defaulting to CodeInternal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: CodeInternal, Message: "internal error", Cause: err}
}

// IsValidation reports whether err is a validation AppError.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeValidation
}
