package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio del libro de inventario (sin dependencias externas).
var (
	ErrNotFound            = errors.New("registro de inventario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrLotConflict         = fmt.Errorf("%w: el lote ya existe con otra fecha de vencimiento", ErrInvalidInput)
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, intente de nuevo")
	ErrStoreUnavailable    = errors.New("almacenamiento no disponible")

	// ErrVersionConflict lo devuelven los stores cuando la escritura condicional
	// pierde la carrera. No sale del ConcurrencyController.
	ErrVersionConflict = errors.New("la versión del registro cambió")
)

// InsufficientStockError indica cuánto stock vigente falta para cubrir un consumo.
type InsufficientStockError struct {
	Requested int
	Available int
	Shortfall int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: solicitado %d, disponible %d, faltante %d",
		ErrInsufficientStock, e.Requested, e.Available, e.Shortfall)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NewInsufficientStock construye el error calculando el faltante.
func NewInsufficientStock(requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		Requested: requested,
		Available: available,
		Shortfall: requested - available,
	}
}

// AuthorizationError describe una denegación de AccessScope.
type AuthorizationError struct {
	ActorID    string
	ClinicID   string
	Permission string
	Reason     string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: actor %q, clínica %q, permiso %q (%s)",
		ErrForbidden, e.ActorID, e.ClinicID, e.Permission, e.Reason)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrForbidden }

// FieldError es una falla de validación asociada a un campo.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError agrupa los campos inválidos de una entrada.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// IsTransient reporta si el error viene de la infraestructura y puede reintentarse
// más tarde (conflicto agotado o store caído), a diferencia de los resultados
// deterministas de la entrada.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrVersionConflict)
}
