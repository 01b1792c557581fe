package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so the request boundary can translate it
// to an HTTP status without inspecting message strings. Everything
// the core can fail on falls into one of these.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindPayloadTooLarge
	KindNotFound
	KindRemoteUnavailable
	KindRemoteDownloadFailed
)

// Error is the error type the core components return. It wraps an
// underlying error (which may contain internal paths or remote
// addresses and is only ever logged) behind a Kind and a message that
// is safe to show a client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func NewError(kind Kind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the message plus the underlying error, for logs only.
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (underlying error: %s)", e.Message, e.Err.Error())
	}
	return e.Message
}

// HTTPStatus maps the error's kind to the status code the request
// boundary should return.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AsError returns err as a *Error, wrapping it as KindInternal if it
// is some other error type. The request boundary calls this so that
// unexpected failures surface as a generic 500 with the real cause
// preserved for logging.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(KindInternal, "Internal server error", err)
}
