// Package apperr defines the error kinds surfaced by document and team operations.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorization is returned when the caller lacks the required role or ownership.
	ErrAuthorization = errors.New("not authorized")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when a referenced record does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record already exists.
	ErrConflict = errors.New("conflict")
	// ErrBackend is returned for failures of the storage or query layer.
	ErrBackend = errors.New("backend failure")
)

// Error is a categorized error. Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Authorization returns an authorization error with msg.
func Authorization(msg string) error {
	return &Error{Kind: ErrAuthorization, Message: msg}
}

// Validation returns a validation error with msg.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// NotFound returns a not-found error with msg.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Conflict returns a conflict error with msg.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Backend wraps err as a backend failure. Errors that already carry a kind
// are returned unchanged.
func Backend(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: ErrBackend, Message: msg, Err: err}
}

// KindOf returns the kind sentinel of err, or ErrBackend for unknown errors.
func KindOf(err error) error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrBackend
}
