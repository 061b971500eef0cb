package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/validation"
)

func TestValidator_AcumulaTodosLosCampos(t *testing.T) {
	var v validation.Validator
	v.Add(
		validation.Required("clinic_id", " "),
		validation.Required("product_id", "P1"),
		validation.Positive("quantity", 0),
		validation.Date("expiration_date", time.Time{}),
	).Check(false, "total_units", "no coincide con las líneas")

	err := v.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	fields := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"clinic_id", "quantity", "expiration_date", "total_units"}, fields)
}

func TestValidator_SinErrores(t *testing.T) {
	var v validation.Validator
	v.Add(validation.Ok(), validation.NonNegative("minimum", 0))
	assert.NoError(t, v.Err())
	assert.Empty(t, v.Failures())
}

func TestResult_Variantes(t *testing.T) {
	assert.True(t, validation.Ok().IsOk())
	r := validation.Fail("reason", "es obligatorio")
	assert.False(t, r.IsOk())
	assert.Equal(t, "reason", r.Field)
}
