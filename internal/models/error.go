package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Auth flow errors
	ErrDuplicateEmail     = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrInvalidDomain      = errors.New("email is not an institutional address")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrAccountBlocked     = errors.New("account is blocked")

	// Session state errors
	ErrNoSession    = errors.New("no active session")
	ErrAdminProfile = errors.New("admin accounts have no student profile")

	ErrValidation = errors.New("validation failed")

	// ErrTxAborted reports a transaction the store gave up on after
	// repeated concurrent-update aborts. The request may be retried.
	ErrTxAborted = errors.New("transaction aborted by a concurrent update")
)

// ValidationError describes a single rejected form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
