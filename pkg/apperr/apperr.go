// Package apperr classifies application failures so transport layers can
// pick a response code without knowing which component raised them.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInternal        Kind = "INTERNAL"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindInvalidState    Kind = "INVALID_STATE"
)

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind Kind, op string, err error, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}

func NotFound(op string, err error, format string, args ...any) error {
	return newError(KindNotFound, op, err, format, args...)
}

func InvalidArgument(op string, err error, format string, args ...any) error {
	return newError(KindInvalidArgument, op, err, format, args...)
}

func InvalidState(op string, err error, format string, args ...any) error {
	return newError(KindInvalidState, op, err, format, args...)
}

func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain.
// Errors that were never classified are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }
func IsInvalidState(err error) bool    { return KindOf(err) == KindInvalidState }

// Message returns the client-safe message of a classified error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return "internal error"
}
