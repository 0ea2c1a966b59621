// Package errors provides the structured error type shared by every staffline
// package.
//
// All failures raised by the theory types, the score model and the layout
// pipeline are *Error values tagged with a Code (also exported as Kind).
// Builder and model mutations fail fast by returning an *Error; layout clamps
// degenerate geometry instead of failing, and drawing or audio failures are
// logged by their callers rather than returned.
//
// # Error Codes
//
//   - INVALID_ARG: a caller passed an out-of-range or malformed argument
//   - NOTE, SCALE, KEY_SIGNATURE, TIME_SIGNATURE: theory value parsing failures
//   - SCORE: a score model, layout or navigation invariant was violated
//   - UNKNOWN: anything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNote, "invalid note: %s", s)
//	if errors.Is(err, errors.ErrCodeNote) {
//	    // Handle parse failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeScore, origErr, "cannot add measure")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Kind is the discriminator name used by score and theory callers.
type Kind = Code

// Error codes for different error categories.
const (
	ErrCodeInvalidArg    Code = "INVALID_ARG"
	ErrCodeNote          Code = "NOTE"
	ErrCodeScale         Code = "SCALE"
	ErrCodeKeySignature  Code = "KEY_SIGNATURE"
	ErrCodeTimeSignature Code = "TIME_SIGNATURE"
	ErrCodeScore         Code = "SCORE"
	ErrCodeUnknown       Code = "UNKNOWN"
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

// Kind returns the error code. It reads better at score call sites.
func (e *Error) Kind() Kind {
	return e.Code
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
// Returns ErrCodeUnknown for non-nil errors that are not an *Error,
// and the empty string for nil.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
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
