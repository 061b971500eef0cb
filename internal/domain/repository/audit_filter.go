package repository

import (
	"encoding/json"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/pkg/textnorm"
)

// Matches evalúa el filtro en memoria, para stores sin motor de consultas propio.
func (f AuditFilter) Matches(e *entity.AuditLogEntry) bool {
	if f.ClinicID != "" && e.ClinicIDValue() != f.ClinicID {
		return false
	}
	if f.ActorID != "" && e.ActorID != f.ActorID {
		return false
	}
	if f.ActionType != "" && e.ActionType != f.ActionType {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	if f.Text != "" {
		raw, err := json.Marshal(e.Details)
		if err != nil || !textnorm.Contains(string(raw), f.Text) {
			return false
		}
	}
	return true
}

// Page recorta una lista ya ordenada según Limit/Offset.
func (f AuditFilter) Page(all []*entity.AuditLogEntry) []*entity.AuditLogEntry {
	if f.Offset >= len(all) {
		return []*entity.AuditLogEntry{}
	}
	end := len(all)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end]
}
