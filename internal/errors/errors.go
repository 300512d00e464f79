package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// TemplateNotFound indicates no page template is registered under the name
	TemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	// RenderFailed indicates a template failed while executing
	RenderFailed ErrorCode = "RENDER_FAILED"
	// LogWriteFailed indicates the request log could not be appended
	LogWriteFailed ErrorCode = "LOG_WRITE_FAILED"
	// ConfigInvalid indicates the loaded configuration was rejected
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// SiteError is an error with a stable code and an optional underlying cause.
type SiteError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a SiteError. cause may be nil.
func New(code ErrorCode, message string, cause error) *SiteError {
	return &SiteError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *SiteError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SiteError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SiteError) WithDetails(details interface{}) *SiteError {
	e.Details = details
	return e
}

// StatusFor maps an error code to the HTTP status served to clients.
func StatusFor(code ErrorCode) int {
	switch code {
	case TemplateNotFound, RenderFailed, LogWriteFailed, ConfigInvalid, InternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf returns the code of err when it is (or wraps) a SiteError,
// InternalError otherwise.
func CodeOf(err error) ErrorCode {
	var se *SiteError
	if As(err, &se) {
		return se.Code
	}
	return InternalError
}
