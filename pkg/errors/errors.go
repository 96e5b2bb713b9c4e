// Package errors provides structured error types for the modelsee compiler.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - GRAPH_*: Graph construction precondition failures
//   - SHAPE_*: Shape inference and validation failures
//   - CONFIG_*: Layer configuration failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownLayerType, "no layer registered for %q", tag)
//	if errors.Is(err, errors.ErrCodeUnknownLayerType) {
//	    // Handle unknown layer type
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidGraph, origErr, "decode graph %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph construction errors
	ErrCodeSelfLoop        Code = "GRAPH_SELF_LOOP"
	ErrCodeUnknownEndpoint Code = "GRAPH_UNKNOWN_ENDPOINT"
	ErrCodeDuplicateNode   Code = "GRAPH_DUPLICATE_NODE"
	ErrCodeInvalidGraph    Code = "GRAPH_INVALID"
	ErrCodeGraphCycle      Code = "GRAPH_CYCLE"
	ErrCodeUnreachable     Code = "GRAPH_UNREACHABLE_NODE"

	// Registry errors
	ErrCodeUnknownLayerType Code = "UNKNOWN_LAYER_TYPE"
	ErrCodeDuplicateLayer   Code = "DUPLICATE_LAYER_TYPE"

	// Shape errors
	ErrCodeRankMismatch          Code = "SHAPE_RANK_MISMATCH"
	ErrCodeIncompatibleDimension Code = "SHAPE_INCOMPATIBLE_DIMENSION"
	ErrCodeInvalidShape          Code = "SHAPE_INVALID"

	// Configuration errors
	ErrCodeConfigType Code = "CONFIG_TYPE_ERROR"

	// Code generation errors
	ErrCodeGenerationBlocked Code = "GENERATION_BLOCKED"
	ErrCodeUnknownFramework  Code = "UNKNOWN_FRAMEWORK"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
