package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
	ErrDeliveryFailed  = errors.New("delivery failed")
)

// RetryAfterError reports how long the caller must wait before requesting
// another verification code. Seconds is always >= 1.
type RetryAfterError struct {
	Seconds int
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting a new code", e.Seconds)
}

func (e *RetryAfterError) Unwrap() error { return ErrTooManyRequests }

// DuplicateFieldError identifies which unique field collided during account
// creation (email, cpf or cnpj).
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("an account with this %s already exists", e.Field)
}

func (e *DuplicateFieldError) Unwrap() error { return ErrConflict }
