package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error for HTTP status mapping.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindConflict
)

// Error is a domain error carrying a client-safe message and a kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound returns a not-found error with the given client-facing message.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// BadRequest returns a validation error with the given client-facing message.
func BadRequest(message string) error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Conflict returns a conflict error with the given client-facing message.
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func IsNotFound(err error) bool   { return is(err, KindNotFound) }
func IsBadRequest(err error) bool { return is(err, KindBadRequest) }
func IsConflict(err error) bool   { return is(err, KindConflict) }

// StatusCode maps an error to its HTTP status. Unknown errors map to 500.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return fiber.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindBadRequest:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
