// Package apperror defines the error kinds shared by every layer of the API.
//
// Services and repositories return *AppError values wrapping one of the
// sentinel kinds below. Only the HTTP layer (handler/response.go) knows how a
// kind maps to a status code. Anything that is not an *AppError is treated as
// an unexpected failure.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource. The id is not echoed back in the
// message so a malformed id and an unknown one read the same to a caller.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", capitalize(resource)),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// MissingFields returns a validation error naming every missing field, e.g.
// "Please provide title and content".
func MissingFields(fields ...string) *AppError {
	var list string
	switch len(fields) {
	case 0:
		list = "the required fields"
	case 1:
		list = fields[0]
	default:
		list = strings.Join(fields[:len(fields)-1], ", ") + " and " + fields[len(fields)-1]
	}
	return &AppError{
		Err:     ErrValidation,
		Message: "Please provide " + list,
		Field:   strings.Join(fields, ","),
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists with %s", resource, key),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when the caller's identity cannot be established.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
