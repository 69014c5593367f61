package apperr

import (
	"errors"
	"net/http"
)

// Kind is the stable, machine-checkable error category returned to clients.
type Kind string

const (
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidToken Kind = "INVALID_TOKEN"
	KindAlreadyUsed  Kind = "ALREADY_USED"
	KindExpired      Kind = "EXPIRED"
	KindValidation   Kind = "VALIDATION"
	KindInternal     Kind = "INTERNAL"

	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
)

// Error carries a Kind, a message safe to show to the caller and an optional
// cause that is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrExpired) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Internal wraps an unexpected failure. The message is generic on purpose.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

var (
	ErrConflict     = New(KindConflict, "email already registered")
	ErrUnauthorized = New(KindUnauthorized, "invalid credentials")
	ErrForbidden    = New(KindForbidden, "access denied")
	ErrNotFound     = New(KindNotFound, "not found")
	ErrInvalidToken = New(KindInvalidToken, "invalid reset token")
	ErrAlreadyUsed  = New(KindAlreadyUsed, "token already used")
	ErrExpired      = New(KindExpired, "token expired")
)

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the message that may be sent to the caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidToken, KindAlreadyUsed, KindExpired:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
