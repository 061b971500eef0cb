// Package memory implementa los puertos de inventario y auditoría en memoria.
// Sirve para desarrollo (STORE_DRIVER=memory) y para los tests de casos de uso.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
)

var (
	_ repository.InventoryRecordRepository = (*Store)(nil)
	_ repository.AuditLogRepository        = (*Store)(nil)
)

// Store guarda registros y auditoría protegidos por un mutex. Commit es atómico:
// registro y entrada de auditoría se guardan juntos o ninguno.
type Store struct {
	mu      sync.RWMutex
	records map[string]*entity.InventoryRecord // clinicID/productID -> registro
	audit   []entity.AuditLogEntry
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{records: make(map[string]*entity.InventoryRecord)}
}

func alive(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Get devuelve una copia del registro.
func (s *Store) Get(ctx context.Context, clinicID, productID string) (*entity.InventoryRecord, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[entity.InventoryResourceID(clinicID, productID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

// ListByClinic lista los registros de una clínica ordenados por producto.
func (s *Store) ListByClinic(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error) {
	return s.list(ctx, clinicID, func(*entity.InventoryRecord) bool { return true })
}

// ListLowStock lista los registros bajo su mínimo.
func (s *Store) ListLowStock(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error) {
	return s.list(ctx, clinicID, (*entity.InventoryRecord).IsLowStock)
}

func (s *Store) list(ctx context.Context, clinicID string, keep func(*entity.InventoryRecord) bool) ([]*entity.InventoryRecord, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.InventoryRecord, 0)
	for _, rec := range s.records {
		if rec.ClinicID == clinicID && keep(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// Commit aplica la escritura condicional junto con su entrada de auditoría.
func (s *Store) Commit(ctx context.Context, m repository.Mutation) error {
	if err := alive(ctx); err != nil {
		return err
	}
	key := entity.InventoryResourceID(m.Record.ClinicID, m.Record.ProductID)

	s.mu.Lock()
	defer s.mu.Unlock()
	var stored int64
	if cur, ok := s.records[key]; ok {
		stored = cur.Version
	}
	if stored != m.ExpectedVersion {
		return domain.ErrVersionConflict
	}
	s.records[key] = m.Record.Clone()
	if m.Entry != nil {
		s.audit = append(s.audit, *m.Entry)
	}
	return nil
}

// Append agrega una entrada de auditoría.
func (s *Store) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	if err := alive(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.audit = append(s.audit, *entry)
	s.mu.Unlock()
	return nil
}

// Contains busca la entrada por LogID.
func (s *Store) Contains(ctx context.Context, entry *entity.AuditLogEntry) (bool, error) {
	if err := alive(ctx); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.audit {
		if s.audit[i].LogID == entry.LogID {
			return true, nil
		}
	}
	return false, nil
}

// matching devuelve copias de las entradas que cumplen el filtro, más reciente primero.
func (s *Store) matching(f repository.AuditFilter) []*entity.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.AuditLogEntry, 0)
	for i := range s.audit {
		if f.Matches(&s.audit[i]) {
			e := s.audit[i]
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	return out
}

// Query filtra y pagina.
func (s *Store) Query(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLogEntry, int, error) {
	if err := alive(ctx); err != nil {
		return nil, 0, err
	}
	all := s.matching(f)
	return f.Page(all), len(all), nil
}

// Stream recorre las coincidencias de la más antigua a la más reciente.
func (s *Store) Stream(ctx context.Context, f repository.AuditFilter, fn func(*entity.AuditLogEntry) error) error {
	if err := alive(ctx); err != nil {
		return err
	}
	all := s.matching(f)
	for i := len(all) - 1; i >= 0; i-- {
		if err := fn(all[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBefore borra (o cuenta, en dryRun) las entradas anteriores a before.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time, dryRun bool) (int, error) {
	if err := alive(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.audit[:0:0]
	n := 0
	for _, e := range s.audit {
		if e.Timestamp.Before(before) && e.ActionType != entity.ActionAuditCleanup {
			n++
			continue
		}
		kept = append(kept, e)
	}
	if !dryRun {
		s.audit = kept
	}
	return n, nil
}
