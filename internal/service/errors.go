package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies service failures for the HTTP boundary.
type ErrorKind string

const (
	KindBadRequest        ErrorKind = "bad_request"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidAmount     ErrorKind = "invalid_amount"
	KindUnknownAction     ErrorKind = "unknown_action"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindInternal          ErrorKind = "internal"
)

// Error is returned by services for every failure a caller can act on.
// Anything else reaching a handler is treated as internal.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest, KindInvalidAmount, KindUnknownAction:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors that are not *Error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
