// Package audit implementa la bitácora de auditoría: agregar, consultar,
// exportar y depurar entradas.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/clinic-ledger/internal/application/access"
	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Publisher difunde las entradas ya persistidas (stream de auditoría).
type Publisher interface {
	Publish(ctx context.Context, entry *entity.AuditLogEntry) error
}

// Sink recibe exportaciones completas (almacenamiento de objetos).
type Sink interface {
	Put(ctx context.Context, key string, body []byte) error
}

// QueryResult página de auditoría.
type QueryResult struct {
	Entries    []*entity.AuditLogEntry
	TotalCount int
	HasMore    bool
}

// ExportResult resume una exportación enviada al sink.
type ExportResult struct {
	Key   string
	Count int
}

// CleanupResult resume una depuración.
type CleanupResult struct {
	Deleted int
	DryRun  bool
	Before  time.Time
}

// TrailUseCase implementa AuditTrail.
type TrailUseCase struct {
	repo      repository.AuditLogRepository
	scope     *access.ScopeUseCase
	clock     clock.Clock
	ids       clock.IDGenerator
	publisher Publisher
	sink      Sink
	log       zerolog.Logger
}

// Option configura dependencias opcionales del TrailUseCase.
type Option func(*TrailUseCase)

// WithPublisher activa la difusión de entradas.
func WithPublisher(p Publisher) Option {
	return func(uc *TrailUseCase) { uc.publisher = p }
}

// WithSink activa ExportToSink.
func WithSink(s Sink) Option {
	return func(uc *TrailUseCase) { uc.sink = s }
}

// NewTrailUseCase construye el caso de uso.
func NewTrailUseCase(
	repo repository.AuditLogRepository,
	scope *access.ScopeUseCase,
	clk clock.Clock,
	ids clock.IDGenerator,
	log zerolog.Logger,
	opts ...Option,
) *TrailUseCase {
	uc := &TrailUseCase{repo: repo, scope: scope, clock: clk, ids: ids, log: log}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Repository expone el store para lecturas internas que no pasan por el alcance del actor.
func (uc *TrailUseCase) Repository() repository.AuditLogRepository { return uc.repo }

// Recorded indica si la entrada ya quedó guardada en la bitácora.
func (uc *TrailUseCase) Recorded(ctx context.Context, entry *entity.AuditLogEntry) (bool, error) {
	return uc.repo.Contains(ctx, entry)
}

// Stamp completa LogID, Timestamp, Severity y Status si vienen vacíos.
func (uc *TrailUseCase) Stamp(entry *entity.AuditLogEntry) {
	if entry.LogID == "" {
		entry.LogID = uc.ids.NewID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = uc.clock.Now()
	}
	if entry.Severity == "" {
		entry.Severity = entity.SeverityInfo
	}
	if entry.Status == "" {
		entry.Status = entity.StatusSuccess
	}
}

// Append persiste una entrada. Los errores del store se devuelven al llamador.
func (uc *TrailUseCase) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	if entry == nil || entry.ActorID == "" || entry.ActionType == "" {
		return fmt.Errorf("%w: la entrada requiere actor y tipo de acción", domain.ErrInvalidInput)
	}
	uc.Stamp(entry)
	if err := uc.repo.Append(ctx, entry); err != nil {
		return err
	}
	uc.Publish(ctx, entry)
	return nil
}

// AppendBestEffort agrega la entrada y solo registra en el log si falla.
func (uc *TrailUseCase) AppendBestEffort(ctx context.Context, entry *entity.AuditLogEntry) {
	if err := uc.Append(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.Error().Err(err).
			Str("action_type", entry.ActionType).
			Str("resource_id", entry.ResourceID).
			Msg("no se pudo registrar la entrada de auditoría")
	}
}

// Publish difunde una entrada ya persistida; las fallas solo se registran.
func (uc *TrailUseCase) Publish(ctx context.Context, entry *entity.AuditLogEntry) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.Error().Err(err).Str("log_id", entry.LogID).Msg("no se pudo publicar la entrada de auditoría")
	}
}

// Denied registra un access_denied y devuelve el mismo error de autorización.
func (uc *TrailUseCase) Denied(ctx context.Context, actor entity.Actor, err error, resourceType, resourceID string) error {
	details := entity.AuditDetails{Error: err.Error()}
	clinicID := actor.ClinicID
	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		details.Permission = authErr.Permission
		details.Reason = authErr.Reason
		if authErr.ClinicID != "" {
			clinicID = authErr.ClinicID
		}
	}
	uc.AppendBestEffort(ctx, &entity.AuditLogEntry{
		ActorID:      actor.ID,
		ClinicID:     entity.ClinicRef(clinicID),
		ActionType:   entity.ActionAccessDenied,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Severity:     entity.SeverityWarning,
		Status:       entity.StatusError,
	})
	return err
}

// scoped aplica el alcance del actor al filtro y autoriza permission.
func (uc *TrailUseCase) scoped(ctx context.Context, actor entity.Actor, f repository.AuditFilter, permission string) (repository.AuditFilter, error) {
	s := uc.scope.ScopeFilter(actor)
	if !s.Unrestricted {
		if f.ClinicID != "" && f.ClinicID != s.ClinicID {
			err := &domain.AuthorizationError{ActorID: actor.ID, ClinicID: f.ClinicID, Permission: permission, Reason: "la clínica no corresponde al actor"}
			return f, uc.Denied(ctx, actor, err, entity.ResourceAuditLog, "")
		}
		f.ClinicID = s.ClinicID
	}
	if err := uc.scope.Authorize(actor, f.ClinicID, permission); err != nil {
		return f, uc.Denied(ctx, actor, err, entity.ResourceAuditLog, "")
	}
	return f, nil
}

// Query devuelve entradas filtradas, más recientes primero, dentro del alcance del actor.
func (uc *TrailUseCase) Query(ctx context.Context, actor entity.Actor, f repository.AuditFilter) (*QueryResult, error) {
	if f.Offset < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("%w: limit y offset no pueden ser negativos", domain.ErrInvalidInput)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, fmt.Errorf("%w: from posterior a to", domain.ErrInvalidInput)
	}
	switch {
	case f.Limit == 0:
		f.Limit = DefaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	f, err := uc.scoped(ctx, actor, f, entity.PermAuditRead)
	if err != nil {
		return nil, err
	}
	entries, total, err := uc.repo.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		Entries:    entries,
		TotalCount: total,
		HasMore:    f.Offset+len(entries) < total,
	}, nil
}

// Export escribe las coincidencias como NDJSON en orden cronológico estable y
// devuelve cuántas escribió.
func (uc *TrailUseCase) Export(ctx context.Context, actor entity.Actor, f repository.AuditFilter, w io.Writer) (int, error) {
	f, err := uc.scoped(ctx, actor, f, entity.PermAuditExport)
	if err != nil {
		return 0, err
	}
	f.Limit, f.Offset = 0, 0
	enc := json.NewEncoder(w)
	n := 0
	err = uc.repo.Stream(ctx, f, func(e *entity.AuditLogEntry) error {
		if err := enc.Encode(e); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// ExportToSink exporta al almacenamiento de objetos y deja constancia con audit_exported.
func (uc *TrailUseCase) ExportToSink(ctx context.Context, actor entity.Actor, f repository.AuditFilter) (*ExportResult, error) {
	if uc.sink == nil {
		return nil, fmt.Errorf("%w: no hay destino de exportación configurado", domain.ErrStoreUnavailable)
	}
	var buf bytes.Buffer
	n, err := uc.Export(ctx, actor, f, &buf)
	if err != nil {
		return nil, err
	}
	if s := uc.scope.ScopeFilter(actor); !s.Unrestricted {
		f.ClinicID = s.ClinicID
	}
	scope := f.ClinicID
	if scope == "" {
		scope = "all"
	}
	now := uc.clock.Now()
	key := fmt.Sprintf("audit/%s/%s-%s.ndjson", scope, now.Format("20060102T150405Z"), uc.ids.NewID())
	if err := uc.sink.Put(ctx, key, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	entry := &entity.AuditLogEntry{
		ActorID:      actor.ID,
		ClinicID:     entity.ClinicRef(f.ClinicID),
		ActionType:   entity.ActionAuditExported,
		ResourceType: entity.ResourceAuditLog,
		ResourceID:   key,
		Details:      entity.AuditDetails{Quantity: n, Extra: map[string]any{"key": key}},
	}
	if err := uc.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &ExportResult{Key: key, Count: n}, nil
}

// Cleanup borra las entradas anteriores a before, salvo las audit_cleanup.
// Solo actores de sistema. Siempre deja una entrada audit_cleanup, también en dry-run.
func (uc *TrailUseCase) Cleanup(ctx context.Context, actor entity.Actor, before time.Time, dryRun bool) (*CleanupResult, error) {
	if !actor.System {
		err := &domain.AuthorizationError{ActorID: actor.ID, ClinicID: actor.ClinicID, Permission: entity.PermAuditCleanup, Reason: "solo actores de sistema"}
		return nil, uc.Denied(ctx, actor, err, entity.ResourceAuditLog, "")
	}
	if before.IsZero() {
		return nil, fmt.Errorf("%w: before es obligatorio", domain.ErrInvalidInput)
	}
	n, err := uc.repo.DeleteBefore(ctx, before, dryRun)
	if err != nil {
		return nil, err
	}
	entry := &entity.AuditLogEntry{
		ActorID:      actor.ID,
		ActionType:   entity.ActionAuditCleanup,
		ResourceType: entity.ResourceAuditLog,
		Details: entity.AuditDetails{
			Quantity: n,
			Extra:    map[string]any{"before": before.UTC().Format(time.RFC3339), "dry_run": dryRun},
		},
	}
	if err := uc.Append(ctx, entry); err != nil {
		return nil, err
	}
	uc.log.Info().Int("deleted", n).Bool("dry_run", dryRun).Time("before", before).Msg("depuración de auditoría")
	return &CleanupResult{Deleted: n, DryRun: dryRun, Before: before}, nil
}
