package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an operation outcome so handlers can map it to an HTTP
// status and callers can tell validation failures from store failures.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidActor      Kind = "invalid_actor"
	KindInvalidMembership Kind = "invalid_membership"
	KindInvalidFormat     Kind = "invalid_format"
	KindAlreadyExists     Kind = "already_exists"
	KindDeliveryFailed    Kind = "delivery_failed"
	KindInternal          Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error          { return New(KindNotFound, message) }
func InvalidActor(message string) *Error      { return New(KindInvalidActor, message) }
func InvalidMembership(message string) *Error { return New(KindInvalidMembership, message) }
func InvalidFormat(message string) *Error     { return New(KindInvalidFormat, message) }
func AlreadyExists(message string) *Error     { return New(KindAlreadyExists, message) }

// KindOf reports the Kind carried by err, or KindInternal when err is not
// a classified error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
