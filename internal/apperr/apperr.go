// Package apperr defines the six-kind error taxonomy spec.md §7 requires:
// NotFound, Conflict, Invalid, Integrity, Backend, Unavailable. Every layer
// (storage, scheduler, mcqgen) wraps lower-level errors into one of these
// kinds before it escapes the package, the way the teacher's storage layer
// translates sql.ErrNoRows into a plain "not found" error one layer down.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one of the six taxonomy members.
type Kind string

const (
	NotFound    Kind = "not_found"
	Conflict    Kind = "conflict"
	Invalid     Kind = "invalid"
	Integrity   Kind = "integrity"
	Backend     Kind = "backend"
	Unavailable Kind = "unavailable"
)

// Error is a taxonomy-tagged error that wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a taxonomy error with no wrapped cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a taxonomy error wrapping cause, or returns nil if cause is nil.
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool    { return Is(err, NotFound) }
func IsConflict(err error) bool    { return Is(err, Conflict) }
func IsInvalid(err error) bool     { return Is(err, Invalid) }
func IsIntegrity(err error) bool   { return Is(err, Integrity) }
func IsBackend(err error) bool     { return Is(err, Backend) }
func IsUnavailable(err error) bool { return Is(err, Unavailable) }
