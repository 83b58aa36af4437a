// Package apperr defines the error kinds the complaint workflow reports to
// its callers. Every kind is recoverable at the request boundary.
package apperr

import (
	"errors"
	"fmt"
	"time"

	"campusvoice/backend/internal/models"
)

var (
	ErrUnauthorized     = errors.New("not authorized")
	ErrNotFound         = errors.New("not found")
	ErrCooldownActive   = errors.New("complaint cooldown active")
	ErrInvalidCategory  = errors.New("invalid complaint category")
	ErrValidationFailed = errors.New("validation failed")
)

// Unauthorized wraps ErrUnauthorized with the operation that was refused.
func Unauthorized(op string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, op)
}

// CooldownError reports that a student must wait before filing again in a category.
type CooldownError struct {
	Category    models.Category
	AvailableAt time.Time
	Remaining   time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s available again at %s", ErrCooldownActive, e.Category, e.AvailableAt.UTC().Format(time.RFC3339))
}

func (e *CooldownError) Is(target error) bool { return target == ErrCooldownActive }

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ErrValidationFailed.Error()
	}
	return e.Err.Error()
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

func (e *ValidationError) Unwrap() error { return e.Err }
