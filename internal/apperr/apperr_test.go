package apperr_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"campusvoice/backend/internal/apperr"
	"campusvoice/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCooldownError_IsKind(t *testing.T) {
	err := fmt.Errorf("submit: %w", &apperr.CooldownError{
		Category:    models.CategoryCleaning,
		AvailableAt: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC),
		Remaining:   72 * time.Hour,
	})

	assert.ErrorIs(t, err, apperr.ErrCooldownActive)
	assert.NotErrorIs(t, err, apperr.ErrValidationFailed)

	var cd *apperr.CooldownError
	assert.True(t, errors.As(err, &cd))
	assert.Equal(t, 72*time.Hour, cd.Remaining)
	assert.Contains(t, cd.Error(), "CLEANING")
}

func TestValidationError_IsKind(t *testing.T) {
	cause := errors.New("username taken")
	err := apperr.NewValidationError(cause, apperr.FieldError{Field: "enrollment_number", Error: "taken"})

	assert.ErrorIs(t, err, apperr.ErrValidationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "username taken", err.Error())

	empty := &apperr.ValidationError{}
	assert.Equal(t, apperr.ErrValidationFailed.Error(), empty.Error())
}

func TestUnauthorized(t *testing.T) {
	err := apperr.Unauthorized("validateComplaint")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Contains(t, err.Error(), "validateComplaint")
}
