package service

import (
	"errors"
	"fmt"

	"github.com/atinyakov/GophTube/internal/repository"
)

// Kind classifies a service failure so the transport layer can pick a
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a failure with a message safe to show to API users.
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

func (e *Error) Unwrap() error { return e.Err }

// PublicMessage is the text sent to API users.
func (e *Error) PublicMessage() string { return e.Message }

func fail(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// notFound turns a missing row into a KindNotFound error carrying msg and
// wraps anything else as internal.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	}
	return internal(err)
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }

func internal(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindInternal, Message: "Something went wrong", Err: err}
}
