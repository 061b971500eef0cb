package dynamo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// Claves de la tabla de auditoría.
const (
	auditGSI       = "GSI1"
	auditGSIKey    = "AUDIT" // valor fijo de gsi1pk para recorrer todas las clínicas
	systemPK       = "SYSTEM"
	clinicPKPrefix = "CLINIC#"
)

// sortTimeLayout ancho fijo: el orden lexicográfico de sk es el cronológico.
const sortTimeLayout = "2006-01-02T15:04:05.000000000Z"

// recordItem estructura del registro de inventario en DynamoDB.
type recordItem struct {
	ClinicID          string `dynamodbav:"clinic_id"`
	ProductID         string `dynamodbav:"product_id"`
	QuantityInStock   int    `dynamodbav:"quantity_in_stock"`
	MinimumStockLevel int    `dynamodbav:"minimum_stock_level"`
	Lots              string `dynamodbav:"lots"`
	Version           int64  `dynamodbav:"version"`
	LastMovement      string `dynamodbav:"last_movement,omitempty"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

// auditItem estructura de la entrada de auditoría en DynamoDB.
type auditItem struct {
	PK           string `dynamodbav:"pk"`
	SK           string `dynamodbav:"sk"`
	GSI1PK       string `dynamodbav:"gsi1pk"`
	LogID        string `dynamodbav:"log_id"`
	Timestamp    string `dynamodbav:"timestamp"`
	ActorID      string `dynamodbav:"actor_id"`
	ClinicID     string `dynamodbav:"clinic_id,omitempty"`
	ActionType   string `dynamodbav:"action_type"`
	ResourceType string `dynamodbav:"resource_type"`
	ResourceID   string `dynamodbav:"resource_id"`
	Details      string `dynamodbav:"details"`
	Severity     string `dynamodbav:"severity"`
	Status       string `dynamodbav:"status"`
}

func auditPK(clinicID string) string {
	if clinicID == "" {
		return systemPK
	}
	return clinicPKPrefix + clinicID
}

func sortTime(t time.Time) string {
	return t.UTC().Format(sortTimeLayout)
}

func auditSK(t time.Time, logID string) string {
	return sortTime(t) + "#" + logID
}

func toRecordItem(r *entity.InventoryRecord) (recordItem, error) {
	lots, err := json.Marshal(r.Lots)
	if err != nil {
		return recordItem{}, fmt.Errorf("marshal lots: %w", err)
	}
	item := recordItem{
		ClinicID:          r.ClinicID,
		ProductID:         r.ProductID,
		QuantityInStock:   r.QuantityInStock,
		MinimumStockLevel: r.MinimumStockLevel,
		Lots:              string(lots),
		Version:           r.Version,
		UpdatedAt:         r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.LastMovement != nil {
		lm, err := json.Marshal(r.LastMovement)
		if err != nil {
			return recordItem{}, fmt.Errorf("marshal last_movement: %w", err)
		}
		item.LastMovement = string(lm)
	}
	return item, nil
}

func (it recordItem) toEntity() (*entity.InventoryRecord, error) {
	rec := &entity.InventoryRecord{
		ClinicID:          it.ClinicID,
		ProductID:         it.ProductID,
		QuantityInStock:   it.QuantityInStock,
		MinimumStockLevel: it.MinimumStockLevel,
		Version:           it.Version,
		Lots:              []entity.Lot{},
	}
	if it.Lots != "" {
		if err := json.Unmarshal([]byte(it.Lots), &rec.Lots); err != nil {
			return nil, fmt.Errorf("unmarshal lots: %w", err)
		}
	}
	if it.LastMovement != "" {
		rec.LastMovement = &entity.LastMovement{}
		if err := json.Unmarshal([]byte(it.LastMovement), rec.LastMovement); err != nil {
			return nil, fmt.Errorf("unmarshal last_movement: %w", err)
		}
	}
	if it.UpdatedAt != "" {
		ts, err := time.Parse(time.RFC3339Nano, it.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("updated_at: %w", err)
		}
		rec.UpdatedAt = ts.UTC()
	}
	return rec, nil
}

func toAuditItem(e *entity.AuditLogEntry) (auditItem, error) {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return auditItem{}, fmt.Errorf("marshal details: %w", err)
	}
	return auditItem{
		PK:           auditPK(e.ClinicIDValue()),
		SK:           auditSK(e.Timestamp, e.LogID),
		GSI1PK:       auditGSIKey,
		LogID:        e.LogID,
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorID:      e.ActorID,
		ClinicID:     e.ClinicIDValue(),
		ActionType:   e.ActionType,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      string(details),
		Severity:     e.Severity,
		Status:       e.Status,
	}, nil
}

func (it auditItem) toEntity() (*entity.AuditLogEntry, error) {
	ts, err := time.Parse(time.RFC3339Nano, it.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	e := &entity.AuditLogEntry{
		LogID:        it.LogID,
		Timestamp:    ts.UTC(),
		ActorID:      it.ActorID,
		ClinicID:     entity.ClinicRef(it.ClinicID),
		ActionType:   it.ActionType,
		ResourceType: it.ResourceType,
		ResourceID:   it.ResourceID,
		Severity:     it.Severity,
		Status:       it.Status,
	}
	if err := json.Unmarshal([]byte(it.Details), &e.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	return e, nil
}
