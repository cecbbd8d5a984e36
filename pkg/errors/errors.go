// Package errors provides the coded error type used across setupforge.
// Codes are stable so tests and the CLI exit-code mapping can rely on them.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for the build failure taxonomy
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Manifest errors
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Warning-level: unknown section/key in the descriptor (never fatal)
	ErrUnknownDirective ErrorCode = "UNKNOWN_DIRECTIVE"

	// Cross-reference errors (task names in Icons/Run/Files)
	ErrReferenceInvalid ErrorCode = "REFERENCE_INVALID"

	// Resolver errors
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// Bundle errors
	ErrCompressionBackend ErrorCode = "COMPRESSION_BACKEND"
	ErrIOWrite            ErrorCode = "IO_WRITE"
	ErrIORead             ErrorCode = "IO_READ"
)

// SetupError represents a structured error with code and details
type SetupError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SetupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SetupError) Unwrap() error {
	return e.Wrapped
}

// Is matches two SetupErrors by code
func (e *SetupError) Is(target error) bool {
	var targetErr *SetupError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SetupError with the given code and message
func New(code ErrorCode, message string) *SetupError {
	return &SetupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SetupError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SetupError {
	return &SetupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SetupError
func Wrap(err error, code ErrorCode, message string) *SetupError {
	if err == nil {
		return nil
	}
	return &SetupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SetupError {
	if err == nil {
		return nil
	}
	return &SetupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SetupError) WithDetail(key string, value interface{}) *SetupError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the ErrorCode from any error, ErrUnknown if it is not coded
func CodeOf(err error) ErrorCode {
	var se *SetupError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrUnknown
}
