// Package validation expresa las reglas de entrada como resultados por campo
// (Ok | Error(campo, motivo)) en lugar de cortar en el primer error.
package validation

import (
	"strings"
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain"
)

// Result es Ok o un error asociado a un campo.
type Result struct {
	Field  string
	Reason string
	failed bool
}

// Ok es el resultado válido.
func Ok() Result { return Result{} }

// Fail construye un error de campo.
func Fail(field, reason string) Result {
	return Result{Field: field, Reason: reason, failed: true}
}

// IsOk indica si el resultado es válido.
func (r Result) IsOk() bool { return !r.failed }

// Required exige un texto no vacío.
func Required(field, value string) Result {
	if strings.TrimSpace(value) == "" {
		return Fail(field, "es obligatorio")
	}
	return Ok()
}

// Positive exige n > 0.
func Positive(field string, n int) Result {
	if n <= 0 {
		return Fail(field, "debe ser mayor que cero")
	}
	return Ok()
}

// NonNegative exige n >= 0.
func NonNegative(field string, n int) Result {
	if n < 0 {
		return Fail(field, "no puede ser negativo")
	}
	return Ok()
}

// Date exige una fecha presente.
func Date(field string, t time.Time) Result {
	if t.IsZero() {
		return Fail(field, "fecha requerida")
	}
	return Ok()
}

// Validator acumula resultados.
type Validator struct {
	results []Result
}

// Add registra resultados; los Ok se ignoran.
func (v *Validator) Add(results ...Result) *Validator {
	for _, r := range results {
		if !r.IsOk() {
			v.results = append(v.results, r)
		}
	}
	return v
}

// Check agrega Fail(field, reason) cuando cond es falsa.
func (v *Validator) Check(cond bool, field, reason string) *Validator {
	if !cond {
		v.results = append(v.results, Fail(field, reason))
	}
	return v
}

// Failures devuelve los errores registrados.
func (v *Validator) Failures() []Result { return v.results }

// Err devuelve *domain.ValidationError o nil.
func (v *Validator) Err() error {
	if len(v.results) == 0 {
		return nil
	}
	fields := make([]domain.FieldError, 0, len(v.results))
	for _, r := range v.results {
		fields = append(fields, domain.FieldError{Field: r.Field, Reason: r.Reason})
	}
	return &domain.ValidationError{Fields: fields}
}
