// Package apperr defines the closed set of failure kinds produced by the
// booking core.  Handlers translate a Kind into an HTTP status in one
// place; everything below the handlers returns *Error values or plain
// errors, which classify as Unexpected.
package apperr

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure categories of the booking core.
type Kind int

const (
	Unexpected Kind = iota
	NotFound
	Validation
	SeatUnavailable
	Immutable
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case SeatUnavailable:
		return "seat_unavailable"
	case Immutable:
		return "immutable"
	default:
		return "unexpected"
	}
}

// Error carries a Kind, a human readable message and optional field level
// details (e.g. the offending seat ids).  Err is the underlying cause, if
// any, and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// WithField returns e with an additional detail entry.
func (e *Error) WithField(name string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[name] = value
	return e
}

// KindOf reports the Kind of err.  Errors that are not (and do not wrap)
// an *Error are Unexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unexpected
}
