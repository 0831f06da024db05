// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Request errors
	ErrNoImage          = &Error{Code: "NO_IMAGE", Message: "No image provided"}
	ErrInvalidRequest   = &Error{Code: "INVALID_REQUEST", Message: "invalid request body"}
	ErrMethodNotAllowed = &Error{Code: "METHOD_NOT_ALLOWED", Message: "Method Not Allowed"}

	// Intake errors
	ErrUnsupportedImage = &Error{Code: "UNSUPPORTED_IMAGE", Message: "Please upload a PNG or JPEG image."}
	ErrInvalidDataURL   = &Error{Code: "INVALID_DATA_URL", Message: "invalid data URL"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "Server configuration error: Missing API Key"}

	// LLM errors
	ErrLLMFailed   = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
	ErrUpstream    = &Error{Code: "UPSTREAM_ERROR", Message: "upstream model returned an error"}
	ErrNoContent   = &Error{Code: "NO_CONTENT", Message: "No content generated"}
	ErrParseFailed = &Error{Code: "PARSE_FAILED", Message: "Failed to parse model response as JSON"}
)
