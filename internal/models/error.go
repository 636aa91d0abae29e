package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Domain errors
	ErrQuotaExceeded       = errors.New("daily application limit reached")
	ErrInsufficientCredits = errors.New("banked credits cannot go below zero")
	ErrInvalidTransition   = errors.New("invalid application status transition")
	ErrJobClosed           = errors.New("job is no longer accepting applications")
)

// QuotaExceededError is ErrQuotaExceeded with the time the allowance refills.
type QuotaExceededError struct {
	Limit   int
	ResetAt time.Time
	ResetIn time.Duration
}

func (e *QuotaExceededError) Error() string {
	return ErrQuotaExceeded.Error()
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
