package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business-rule failure so transport code can map it to a
// stable HTTP status without inspecting message text.
type Kind string

const (
	KindUnauthorized      Kind = "unauthorized"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation"
	KindConflict          Kind = "conflict"
)

// Error is the single error type crossing the service boundary. Storage errors
// are wrapped (never exposed verbatim); handlers translate Kind to a status.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newError(KindUnauthorized, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidTransition(format string, args ...interface{}) *Error {
	return newError(KindInvalidTransition, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// Wrap attaches an underlying cause while keeping the caller-facing kind and
// message.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	e := newError(kind, format, args...)
	e.cause = cause
	return e
}

// KindOf returns the taxonomy kind of err, or "" for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// HTTPStatus maps an error to the status code the API contract promises.
// Unclassified errors are internal failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
