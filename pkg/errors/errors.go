// Package errors provides structured error types for the cladding layout
// engine, its CLI and its HTTP API.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the layout core, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Per-region diagnostics that carry a code instead of a bare string
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Layout codes describe how a failure is recovered:
//   - INVALID_REGION, DEGENERATE_BOUNDS: the region is skipped
//   - ELEMENT_CREATION_FAILURE: the single element is skipped
//   - CONFIGURATION_ERROR: the value falls back to a unit-scaled default
//   - COMMIT_FAILURE: the whole run is aborted
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRegion, "region %q has %d points", id, n)
//	if errors.Is(err, errors.ErrCodeInvalidRegion) {
//	    // skip the region
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCommitFailure, origErr, "save layout %s", runID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout errors
	ErrCodeInvalidRegion          Code = "INVALID_REGION"
	ErrCodeDegenerateBounds       Code = "DEGENERATE_BOUNDS"
	ErrCodeElementCreationFailure Code = "ELEMENT_CREATION_FAILURE"
	ErrCodeConfiguration          Code = "CONFIGURATION_ERROR"
	ErrCodeCommitFailure          Code = "COMMIT_FAILURE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidScene  Code = "INVALID_SCENE"

	// Resource errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Request errors
	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeCanceled    Code = "CANCELED"

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

// Unwrap returns the cause.
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

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code and
// cause, or err.Error() for anything else. Region diagnostics and API
// responses use it.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether a layout run can continue after err.
// Commit failures, cancellation and uncoded errors end the run.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeCommitFailure, ErrCodeCanceled, "":
		return false
	}
	return true
}
