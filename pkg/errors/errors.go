// Package errors provides structured error types for chartmotion.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input and configuration validation failures
//   - UNSUPPORTED_* / MISSING_*: Caller programming errors detected at configuration time
//   - NOT_FOUND / SESSION_*: Resource lookup failures
//   - NETWORK_* / TIMEOUT: Cache backend connectivity and request deadlines
//   - INTERNAL_*: Unexpected internal errors
//
// Invalid geometry input (NaN or out-of-domain lookups) is never reported
// through this package: generators recover from it locally by returning no
// geometry for the affected datum.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedScale, "scale kind %d", kind)
//	if errors.Is(err, errors.ErrCodeUnsupportedScale) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidChart, origErr, "decode %s", path)
//
//	// Locate an error inside the chart document
//	err = errors.At(err, "frames[1]")
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidChart      Code = "INVALID_CHART"
	ErrCodeInvalidScale      Code = "INVALID_SCALE"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidMark       Code = "INVALID_MARK"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Configuration (programming) errors
	ErrCodeUnsupportedScale Code = "UNSUPPORTED_SCALE"
	ErrCodeMissingAccessor  Code = "MISSING_ACCESSOR"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired  Code = "SESSION_EXPIRED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	// Field locates the error in the chart document, e.g.
	// frames[0].series[2].points[5]. Empty when not tied to a field.
	Field string
	Cause error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
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
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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

// At returns a copy of err located under field. Locations nest from the
// outside in, so At(At(err, "points[3]"), "series[1]") reports
// series[1].points[3]. Errors without a code become INVALID_INPUT.
func At(err error, field string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Code: ErrCodeInvalidInput, Message: err.Error(), Field: field}
	}
	located := *e
	located.Field = joinField(field, e.Field)
	return &located
}

// Field returns the document location of err, if any.
func Field(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

func joinField(outer, inner string) string {
	switch {
	case inner == "":
		return outer
	case outer == "", strings.HasPrefix(inner, "["):
		return outer + inner
	}
	return outer + "." + inner
}

// IsConfiguration reports whether err signals a caller programming error
// (unsupported scale kind or missing accessor) rather than bad user input.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnsupportedScale, ErrCodeMissingAccessor:
		return true
	}
	return false
}

// IsTimeout reports whether err carries the TIMEOUT code or an expired
// context deadline.
func IsTimeout(err error) bool {
	return Is(err, ErrCodeTimeout) || errors.Is(err, context.DeadlineExceeded)
}
