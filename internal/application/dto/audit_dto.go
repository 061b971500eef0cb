package dto

import (
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// AuditQueryRequest parámetros de GET /api/audit y /api/audit/export.
type AuditQueryRequest struct {
	ClinicID     string `query:"clinic_id"`
	ActorID      string `query:"actor_id"`
	ActionType   string `query:"action_type"`
	ResourceType string `query:"resource_type"`
	ResourceID   string `query:"resource_id"`
	Status       string `query:"status"`
	From         string `query:"from"`
	To           string `query:"to"`
	Q            string `query:"q"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

// AuditLogResponse entrada de auditoría.
type AuditLogResponse struct {
	LogID        string              `json:"log_id"`
	Timestamp    time.Time           `json:"timestamp"`
	ActorID      string              `json:"actor_id"`
	ClinicID     *string             `json:"clinic_id"`
	ActionType   string              `json:"action_type"`
	ResourceType string              `json:"resource_type"`
	ResourceID   string              `json:"resource_id"`
	Details      entity.AuditDetails `json:"details"`
	Severity     string              `json:"severity"`
	Status       string              `json:"status"`
}

// AuditPageResponse página de auditoría.
type AuditPageResponse struct {
	Entries []AuditLogResponse `json:"entries"`
	Page    PageResponse       `json:"page"`
}

// AuditExportResponse exportación enviada al almacenamiento de objetos.
type AuditExportResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// AuditCleanupRequest body para POST /api/audit/cleanup. Before en RFC3339 o
// RetentionDays relativo a ahora.
type AuditCleanupRequest struct {
	Before        *time.Time `json:"before,omitempty"`
	RetentionDays int        `json:"retention_days,omitempty"`
	DryRun        bool       `json:"dry_run"`
}

// AuditCleanupResponse resultado de la depuración.
type AuditCleanupResponse struct {
	Deleted int       `json:"deleted"`
	DryRun  bool      `json:"dry_run"`
	Before  time.Time `json:"before"`
}

// ReconcileRequest body para POST /api/audit/reconcile.
type ReconcileRequest struct {
	ClinicID string `json:"clinic_id,omitempty"`
}

// ReconcileResponse resultado de la reconciliación.
type ReconcileResponse struct {
	ClinicID string   `json:"clinic_id"`
	Checked  int      `json:"checked"`
	Repaired []string `json:"repaired"`
}

// FromAuditEntries convierte entradas a respuesta.
func FromAuditEntries(in []*entity.AuditLogEntry) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(in))
	for _, e := range in {
		out = append(out, AuditLogResponse{
			LogID:        e.LogID,
			Timestamp:    e.Timestamp,
			ActorID:      e.ActorID,
			ClinicID:     e.ClinicID,
			ActionType:   e.ActionType,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Details:      e.Details,
			Severity:     e.Severity,
			Status:       e.Status,
		})
	}
	return out
}
