package repository

import (
	"context"
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// AuditFilter criterios de búsqueda de auditoría. Los campos vacíos no filtran.
// Text busca sin distinguir mayúsculas ni tildes sobre el detalle.
type AuditFilter struct {
	ClinicID     string
	ActorID      string
	ActionType   string
	ResourceType string
	ResourceID   string
	Status       string
	From         *time.Time
	To           *time.Time
	Text         string
	Limit        int
	Offset       int
}

// AuditLogRepository define el puerto de la auditoría: solo agrega, nunca modifica.
// DeleteBefore es la única vía de borrado y nunca borra entradas audit_cleanup.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLogEntry) error
	// Contains indica si ya existe una entrada con el LogID de entry.
	Contains(ctx context.Context, entry *entity.AuditLogEntry) (bool, error)
	// Query devuelve la página pedida (más reciente primero) y el total.
	Query(ctx context.Context, filter AuditFilter) ([]*entity.AuditLogEntry, int, error)
	// Stream recorre todas las coincidencias en orden cronológico, ignorando Limit/Offset.
	Stream(ctx context.Context, filter AuditFilter, fn func(*entity.AuditLogEntry) error) error
	DeleteBefore(ctx context.Context, before time.Time, dryRun bool) (int, error)
}
