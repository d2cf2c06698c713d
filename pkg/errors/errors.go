package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application failure that knows which HTTP status it maps to.
// Code is stable and machine readable; Message is shown to API clients.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err == nil:
		return e.Message
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so a cloned or wrapped
// sentinel still matches errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	var other *Error
	if e == nil || !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an Error around cause.
func Wrap(cause error, code string, status int, message string) *Error {
	e := New(code, status, message)
	e.Err = cause
	return e
}

// Internal wraps an unexpected failure as a 500.
func Internal(cause error, message string) *Error {
	return Wrap(cause, ErrInternal.Code, ErrInternal.Status, message)
}

var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrTokenExpired       = New("TOKEN_EXPIRED", http.StatusUnauthorized, "token expired")
	ErrInvalidToken       = New("INVALID_TOKEN", http.StatusForbidden, "invalid token")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")

	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrBusinessRule = New("BUSINESS_RULE", http.StatusBadRequest, "business rule violated")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")

	ErrInternal = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// ErrCacheMiss signals that a cache lookup found nothing.
var ErrCacheMiss = errors.New("cache miss")

// FromError returns the first *Error in err's chain, or a generic 500 that
// keeps err as its cause.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Internal(err, ErrInternal.Message)
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}

// WithDetails copies err and attaches extra fields for the response body.
func WithDetails(err *Error, details map[string]interface{}) *Error {
	out := Clone(err, "")
	if out != nil {
		out.Details = details
	}
	return out
}
