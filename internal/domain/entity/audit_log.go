package entity

import "time"

// Tipos de acción registrados en la auditoría.
const (
	ActionInventoryReplenished = "inventory_replenished"
	ActionInventoryConsumed    = "inventory_consumed"
	ActionInventoryAdjusted    = "inventory_adjusted"
	ActionLotDiscarded         = "inventory_lot_discarded"
	ActionThresholdUpdated     = "inventory_threshold_updated"
	ActionAuditRepaired        = "inventory_audit_repaired"
	ActionAccessDenied         = "access_denied"
	ActionAuditCleanup         = "audit_cleanup"
	ActionAuditExported        = "audit_exported"
)

// Tipos de recurso.
const (
	ResourceInventoryRecord = "inventory_record"
	ResourceAuditLog        = "audit_log"
)

// Severidades.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Estados.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// LotDebit es la cantidad descontada de un lote.
type LotDebit struct {
	LotID           string `json:"lot_id"`
	QuantityDebited int    `json:"quantity_debited"`
}

// AuditDetails es el detalle estructurado de una entrada: diff antes/después,
// o el motivo de la denegación o del error.
type AuditDetails struct {
	ProductID   string         `json:"product_id,omitempty"`
	ReferenceID string         `json:"reference_id,omitempty"`
	Quantity    int            `json:"quantity,omitempty"`
	Before      *Snapshot      `json:"before,omitempty"`
	After       *Snapshot      `json:"after,omitempty"`
	Debits      []LotDebit     `json:"debits,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Permission  string         `json:"permission,omitempty"`
	Error       string         `json:"error,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// AuditLogEntry es un registro inmutable de la auditoría.
// ClinicID nil significa acción de alcance de sistema.
type AuditLogEntry struct {
	LogID        string       `json:"log_id"`
	Timestamp    time.Time    `json:"timestamp"`
	ActorID      string       `json:"actor_id"`
	ClinicID     *string      `json:"clinic_id"`
	ActionType   string       `json:"action_type"`
	ResourceType string       `json:"resource_type"`
	ResourceID   string       `json:"resource_id"`
	Details      AuditDetails `json:"details"`
	Severity     string       `json:"severity"`
	Status       string       `json:"status"`
}

// ClinicIDValue devuelve el ClinicID o "" para entradas de sistema.
func (e *AuditLogEntry) ClinicIDValue() string {
	if e.ClinicID == nil {
		return ""
	}
	return *e.ClinicID
}

// NewerThan ordena entradas: más reciente primero, empate por LogID.
func (e *AuditLogEntry) NewerThan(o *AuditLogEntry) bool {
	if !e.Timestamp.Equal(o.Timestamp) {
		return e.Timestamp.After(o.Timestamp)
	}
	return e.LogID > o.LogID
}

// ClinicRef devuelve un puntero al id, o nil si está vacío.
func ClinicRef(clinicID string) *string {
	if clinicID == "" {
		return nil
	}
	return &clinicID
}

// InventoryResourceID es el id de recurso de un registro (clínica/producto).
func InventoryResourceID(clinicID, productID string) string {
	return clinicID + "/" + productID
}
