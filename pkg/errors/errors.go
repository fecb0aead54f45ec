// Package errors defines the error vocabulary of the backend. Every error
// that crosses a service boundary carries a Code, and the HTTP layer renders
// errors purely from the code's metadata.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeStateConflict   Code = "STATE_CONFLICT"
	CodePromoIneligible Code = "PROMO_INELIGIBLE"
	CodeIdempotency     Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit       Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeDependency      Code = "DEPENDENCY_ERROR"
)

// Metadata controls how a code is rendered to clients. PublicMessage is what
// an anonymous caller sees; DetailsAllowed gates whether WithDetails payloads
// (promo ineligibility reasons, field errors) leave the process.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:      {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized:    {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:       {http.StatusForbidden, false, "access denied", false},
	CodeNotFound:        {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:        {http.StatusConflict, false, "conflict detected", false},
	CodeStateConflict:   {http.StatusUnprocessableEntity, false, "state transition disallowed", true},
	CodePromoIneligible: {http.StatusUnprocessableEntity, false, "promo code cannot be applied", true},
	CodeIdempotency:     {http.StatusConflict, false, "idempotency key reused", true},
	CodeRateLimit:       {http.StatusTooManyRequests, false, "rate limit exceeded", false},
	CodeInternal:        {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:      {http.StatusServiceUnavailable, true, "dependency unavailable", true},
}

// MetadataFor resolves a code's rendering rules. Unknown codes render as
// internal errors rather than leaking anything.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error with an internal message, an optional client-facing
// details payload, and an optional wrapped cause.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

// New builds a coded error.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches a structured payload. It is only rendered to clients
// when the code's metadata allows details.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the coded error from anywhere in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
