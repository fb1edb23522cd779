// Package errors provides standardized domain errors with codes for the
// knowledge deck.
//
// Usage:
//
//	// In commands - return typed errors
//	if !found {
//	    return errors.NotFoundf("card %s not found", id)
//	}
//
//	// At the caller - check with errors.Is
//	if errors.Is(err, errors.ErrValidation) {
//	    // report to the user, state is unchanged
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeValidation means input failed structural schema checks. The
	// command aborted and state is unchanged.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound means a command targeted an id with no matching record.
	CodeNotFound Code = "NOT_FOUND"
	// CodeStorageUnavailable means the durable store cannot be opened in
	// this environment. Reads degrade to empty; writes surface this.
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	// CodePersistence means a bucket write failed after in-memory state
	// already changed. Durability is at risk until the next successful write.
	CodePersistence Code = "PERSISTENCE"
	// CodeImportRejected means a backup document failed schema validation;
	// the import was a no-op.
	CodeImportRejected Code = "IMPORT_REJECTED"
	// CodeInternal means an unexpected failure.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrStorageUnavailable = &Error{Code: CodeStorageUnavailable, Message: "storage unavailable"}
	ErrPersistence        = &Error{Code: CodePersistence, Message: "persistence write failed"}
	ErrImportRejected     = &Error{Code: CodeImportRejected, Message: "import rejected"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// StorageUnavailable creates a storage unavailable error.
func StorageUnavailable(msg string) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: msg}
}

// Persistence creates a persistence write failure error.
func Persistence(msg string) *Error {
	return &Error{Code: CodePersistence, Message: msg}
}

// ImportRejected creates an import rejected error.
func ImportRejected(msg string) *Error {
	return &Error{Code: CodeImportRejected, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}
