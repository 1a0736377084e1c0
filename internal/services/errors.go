package services

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindNotFound   Kind = "NotFoundError"
	KindConflict   Kind = "ConflictError"
	KindAuth       Kind = "AuthError"
	KindStorage    Kind = "StorageError"
)

// Kind sentinels, matched with errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrStorage    = &Error{Kind: KindStorage}
)

// Error is returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Public()
	if e.Err != nil && e.Message != "" {
		msg += ": " + e.Err.Error()
	} else if e.Err != nil {
		msg = e.Err.Error()
	}
	return msg
}

// Public is the message safe to show to API clients.
func (e *Error) Public() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

func storageError(err error, op string) *Error {
	return newError(KindStorage, err, "%s", op)
}

// KindOf returns the kind of err, or StorageError for anything that did not come from a service.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
