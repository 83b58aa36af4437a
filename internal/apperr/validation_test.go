package apperr_test

import (
	"errors"
	"testing"

	"campusvoice/backend/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValidator(t *testing.T) {
	type form struct {
		Name   string `validate:"required"`
		Stream string `validate:"oneof=BCA MCA"`
	}
	err := apperr.FromValidator(validator.New().Struct(form{Stream: "XYZ"}))

	require.ErrorIs(t, err, apperr.ErrValidationFailed)
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []apperr.FieldError{
		{Field: "Name", Error: "required"},
		{Field: "Stream", Error: "must be one of BCA, MCA"},
	}, verr.Fields)
}

func TestFromValidator_PassesOtherErrors(t *testing.T) {
	cause := errors.New("plain")
	assert.Same(t, cause, apperr.FromValidator(cause))
	assert.NoError(t, apperr.FromValidator(nil))
}
