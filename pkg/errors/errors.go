// Package errors provides structured error types for the brubru engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the JSON server and the orchestrator
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages carried inside failed source results
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - UNKNOWN_* / NOT_FOUND: Resource not found
//   - TRANSIENT_NETWORK, HTTP_STATUS, FETCH_FAILED: fetch failures
//   - INTERNAL_*: Unexpected internal errors
//
// The fetch failure codes are reported by the typed errors of
// [github.com/victorsole/brubru/pkg/httputil] through the ErrorCode method,
// so [GetCode] and [Is] work across the whole taxonomy.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownSource, "unknown source: %s", name)
//	if errors.Is(err, errors.ErrCodeUnknownSource) {
//	    // Caller programming error, surface directly
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNotFound, origErr, "document %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeUnknownSource Code = "UNKNOWN_SOURCE"

	// Fetch errors
	ErrCodeTransientNetwork Code = "TRANSIENT_NETWORK"
	ErrCodeHTTPStatus       Code = "HTTP_STATUS"
	ErrCodeFetch            Code = "FETCH_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error code. It lets *Error satisfy [Coder].
func (e *Error) ErrorCode() Code {
	return e.Code
}

// Coder is implemented by error types that carry a [Code] without being an *Error.
type Coder interface {
	ErrorCode() Code
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain and compares against the outermost coded error.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if nothing in the chain carries a code.
func GetCode(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// UnknownSource returns the error reported when a source name is not registered.
func UnknownSource(name string) *Error {
	return New(ErrCodeUnknownSource, "unknown source: %s", name)
}

// NotFound returns the error reported when a source has no such document.
func NotFound(source, id string, cause error) *Error {
	return Wrap(ErrCodeNotFound, cause, "%s: document %q not found", source, id)
}
