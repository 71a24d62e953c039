// Package apperr defines the error taxonomy shared by services, repositories
// and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindAuthorization Kind = "authorization"
	KindInternal      Kind = "internal"
)

// ErrSelfReference is returned (wrapped in a validation error) when an actor
// targets themselves with a relationship operation.
var ErrSelfReference = errors.New("cannot target yourself")

// Error is a structured error with a machine-checkable kind and a
// human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound reports that a referenced entity does not exist.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports an operation that is not valid in the current state.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Forbidden reports that the actor lacks rights over the target.
func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindAuthorization, format, args...)
}

// SelfReference builds the validation error for self-targeted operations.
func SelfReference(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: ErrSelfReference}
}

// Internal wraps an unexpected failure such as storage I/O.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Wrap passes structured errors through untouched and wraps anything else
// as an internal error.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(err, message)
}
