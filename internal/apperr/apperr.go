// Package apperr carries the error kinds the HTTP layer turns into status codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unexpected Kind = iota
	NotFound
	Conflict
	Unprocessable
	BadRequest
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unprocessable:
		return "unprocessable"
	case BadRequest:
		return "bad_request"
	default:
		return "unexpected"
	}
}

// Error is a failure raised on purpose, with a message safe to show clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewNotFound(message string) error {
	return &Error{Kind: NotFound, Message: message}
}

func NewConflict(message string) error {
	return &Error{Kind: Conflict, Message: message}
}

func NewUnprocessable(message string) error {
	return &Error{Kind: Unprocessable, Message: message}
}

func NewBadRequest(message string) error {
	return &Error{Kind: BadRequest, Message: message}
}

// Wrap attaches a kind and client message to a lower level cause.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
