// Package apperr defines the error taxonomy shared by the booking workflow and
// the HTTP layer. Each error carries a Kind that the route boundary maps to a
// status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation Kind = "validation" // missing or malformed input
	KindNotFound   Kind = "not_found"  // unknown id
	KindConflict   Kind = "conflict"   // invalid state transition
)

// Error is a classified application error. Err is the optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error with a formatted message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a conflict error with a formatted message.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// AsValidation classifies err as a validation error, keeping its message.
// PRE: err is non-nil
// POST: returned error has KindValidation and unwraps to err
func AsValidation(err error) error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
