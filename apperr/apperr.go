package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a business failure so controllers can map it to an HTTP
// status without inspecting message text.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindUnprocessable
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unprocessable(format string, args ...any) *Error {
	return &Error{Kind: KindUnprocessable, Message: fmt.Sprintf(format, args...)}
}

func IsKind(err error, k Kind) bool {
	e := &Error{}

	return errors.As(err, &e) && e.Kind == k
}

// StatusCode maps a failure to its HTTP status. Unknown errors surface as 500.
func StatusCode(err error) int {
	e := &Error{}
	if !errors.As(err, &e) {
		return fiber.StatusInternalServerError
	}

	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindUnprocessable:
		return fiber.StatusUnprocessableEntity
	}

	return fiber.StatusInternalServerError
}
