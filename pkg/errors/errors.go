// Package errors provides structured error types for godepscan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and the library
//   - Machine-readable error codes for programmatic handling
//   - One human-readable diagnostic per failed resolution
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - MANIFEST_NOT_FOUND, UNREADABLE_FILE: the manifest could not be read
//   - MALFORMED_*: the manifest was read but could not be understood
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidManager, "unknown manager: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidManager) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeUnreadableFile, origErr, "Can't read %s", path)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidManager Code = "INVALID_MANAGER"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Manifest access errors
	ErrCodeManifestNotFound Code = "MANIFEST_NOT_FOUND"
	ErrCodeUnreadableFile   Code = "UNREADABLE_FILE"

	// Manifest content errors
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"
	ErrCodeMalformedLine     Code = "MALFORMED_LINE"

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
// It unwraps the error chain looking for an *Error or a
// *MissingManifestError with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var m *MissingManifestError
	if errors.As(err, &m) {
		return m.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message and its cause without the code
// prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// MissingManifestError reports that the manifest a dependency manager
// relies on does not exist, together with the command that creates it.
type MissingManifestError struct {
	Manager     string // Manager selection, e.g. "dep"
	Path        string // Path that was checked
	File        string // Manifest basename, e.g. "Gopkg.lock"
	Remediation string // Command that generates the manifest, e.g. "dep init"
}

// Error implements the error interface.
func (e *MissingManifestError) Error() string {
	return fmt.Sprintf("Can't find %s file.  Please run '%s' command", e.File, e.Remediation)
}

// Code returns the error code for this error type.
func (e *MissingManifestError) Code() Code {
	return ErrCodeManifestNotFound
}
