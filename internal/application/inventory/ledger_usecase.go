// Package inventory contiene los casos de uso del libro de inventario por clínica.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/clinic-ledger/internal/application/access"
	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/clinic-ledger/internal/domain/inventory"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/internal/domain/validation"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

// LedgerUseCase implementa el libro de inventario: toda mutación pasa por
// AccessScope, el ConcurrencyController y deja exactamente una entrada de auditoría.
type LedgerUseCase struct {
	repo    repository.InventoryRecordRepository
	scope   *access.ScopeUseCase
	trail   *audit.TrailUseCase
	ctrl    *ConcurrencyController
	clock   clock.Clock
	metrics Metrics
	log     zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso. metrics puede ser nil.
func NewLedgerUseCase(
	repo repository.InventoryRecordRepository,
	scope *access.ScopeUseCase,
	trail *audit.TrailUseCase,
	clk clock.Clock,
	policy RetryPolicy,
	metrics Metrics,
	log zerolog.Logger,
) *LedgerUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &LedgerUseCase{
		repo:    repo,
		scope:   scope,
		trail:   trail,
		ctrl:    NewConcurrencyController(repo, trail, policy, metrics, log),
		clock:   clk,
		metrics: metrics,
		log:     log,
	}
}

// ReplenishInput entrada de Replenish. ExpirationDate se normaliza a medianoche UTC.
type ReplenishInput struct {
	Actor          entity.Actor
	ClinicID       string
	ProductID      string
	LotID          string
	ExpirationDate time.Time
	Quantity       int
	ReferenceID    string
}

// ConsumeInput entrada de Consume.
type ConsumeInput struct {
	Actor       entity.Actor
	ClinicID    string
	ProductID   string
	Quantity    int
	ReferenceID string
}

// AdjustInput entrada de Adjust. Lots, si viene, reemplaza la distribución completa.
type AdjustInput struct {
	Actor       entity.Actor
	ClinicID    string
	ProductID   string
	NewQuantity *int
	Lots        []entity.Lot
	Reason      string
	ReferenceID string
}

// DiscardInput entrada de DiscardExpired. LotID vacío descarta todos los vencidos.
type DiscardInput struct {
	Actor       entity.Actor
	ClinicID    string
	ProductID   string
	LotID       string
	ReferenceID string
}

// ThresholdInput entrada de SetMinimumStock.
type ThresholdInput struct {
	Actor             entity.Actor
	ClinicID          string
	ProductID         string
	MinimumStockLevel int
}

// ConsumeResult registro resultante y lotes debitados.
type ConsumeResult struct {
	Record *entity.InventoryRecord
	Debits []entity.LotDebit
	Entry  *entity.AuditLogEntry
}

// DiscardResult registro resultante y lotes retirados.
type DiscardResult struct {
	Record  *entity.InventoryRecord
	Removed []entity.LotDebit
}

// authorize consulta AccessScope y, si deniega, deja el access_denied.
func (uc *LedgerUseCase) authorize(ctx context.Context, actor entity.Actor, clinicID, productID, permission string) error {
	if err := uc.scope.Authorize(actor, clinicID, permission); err != nil {
		uc.metrics.ObserveOperation(permission, outcomeLabel(err), 0)
		return uc.trail.Denied(ctx, actor, err, entity.ResourceInventoryRecord, entity.InventoryResourceID(clinicID, productID))
	}
	return nil
}

// failed registra el intento fallido (status=error) sin afectar el resultado.
func (uc *LedgerUseCase) failed(ctx context.Context, actor entity.Actor, action, clinicID, productID string, details entity.AuditDetails, err error) {
	if errors.Is(err, domain.ErrForbidden) || errors.Is(err, context.Canceled) {
		return
	}
	severity := entity.SeverityWarning
	if domain.IsTransient(err) {
		severity = entity.SeverityError
	}
	details.ProductID = productID
	details.Error = err.Error()
	uc.trail.AppendBestEffort(ctx, &entity.AuditLogEntry{
		ActorID:      actor.ID,
		ClinicID:     entity.ClinicRef(clinicID),
		ActionType:   action,
		ResourceType: entity.ResourceInventoryRecord,
		ResourceID:   entity.InventoryResourceID(clinicID, productID),
		Details:      details,
		Severity:     severity,
		Status:       entity.StatusError,
	})
	uc.log.Warn().Err(err).Str("action_type", action).Str("clinic_id", clinicID).Str("product_id", productID).
		Msg("operación de inventario rechazada")
}

// entry arma la entrada de éxito; el controlador completa before/after e id.
func entry(actor entity.Actor, action, clinicID, productID string, now time.Time, details entity.AuditDetails) *entity.AuditLogEntry {
	details.ProductID = productID
	return &entity.AuditLogEntry{
		Timestamp:    now,
		ActorID:      actor.ID,
		ClinicID:     entity.ClinicRef(clinicID),
		ActionType:   action,
		ResourceType: entity.ResourceInventoryRecord,
		ResourceID:   entity.InventoryResourceID(clinicID, productID),
		Details:      details,
		Severity:     entity.SeverityInfo,
		Status:       entity.StatusSuccess,
	}
}

// commit ejecuta la mutación y publica la entrada confirmada.
func (uc *LedgerUseCase) commit(ctx context.Context, op, clinicID, productID string, create bool, fn Mutate) (*Outcome, error) {
	out, err := uc.ctrl.Execute(ctx, op, clinicID, productID, create, fn)
	if err != nil {
		return nil, err
	}
	if out.Entry != nil {
		uc.trail.Publish(ctx, out.Entry)
	}
	return out, nil
}

// Replenish suma stock a un lote, creando el registro si no existe.
func (uc *LedgerUseCase) Replenish(ctx context.Context, in ReplenishInput) (*entity.InventoryRecord, error) {
	if err := uc.authorize(ctx, in.Actor, in.ClinicID, in.ProductID, entity.PermInventoryReplenish); err != nil {
		return nil, err
	}
	out, err := uc.replenish(ctx, in)
	if err != nil {
		return nil, err
	}
	return out.Record, nil
}

func (uc *LedgerUseCase) replenish(ctx context.Context, in ReplenishInput) (*Outcome, error) {
	exp := clock.NormalizeDate(in.ExpirationDate)
	details := entity.AuditDetails{
		ReferenceID: in.ReferenceID,
		Quantity:    in.Quantity,
		Extra:       map[string]any{"lot_id": in.LotID, "expiration_date": exp.Format(time.DateOnly)},
	}

	var v validation.Validator
	v.Add(
		validation.Required("clinic_id", in.ClinicID),
		validation.Required("product_id", in.ProductID),
		validation.Required("lot_id", in.LotID),
		validation.Required("reference_id", in.ReferenceID),
		validation.Date("expiration_date", exp),
	)
	err := v.Err()
	if err == nil && in.Quantity <= 0 {
		err = fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, in.Quantity)
	}
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionInventoryReplenished, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}

	out, err := uc.commit(ctx, "replenish", in.ClinicID, in.ProductID, true, func(cur *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error) {
		now := uc.clock.Now()
		next, err := domaininv.ApplyReplenish(cur, in.LotID, exp, in.Quantity, in.ReferenceID, now)
		if err != nil {
			return nil, nil, err
		}
		return next, entry(in.Actor, entity.ActionInventoryReplenished, in.ClinicID, in.ProductID, now, details), nil
	})
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionInventoryReplenished, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}
	return out, nil
}

// Consume descuenta stock con FEFO. Es todo o nada.
func (uc *LedgerUseCase) Consume(ctx context.Context, in ConsumeInput) (*ConsumeResult, error) {
	if err := uc.authorize(ctx, in.Actor, in.ClinicID, in.ProductID, entity.PermInventoryConsume); err != nil {
		return nil, err
	}
	return uc.consume(ctx, in)
}

func (uc *LedgerUseCase) consume(ctx context.Context, in ConsumeInput) (*ConsumeResult, error) {
	details := entity.AuditDetails{ReferenceID: in.ReferenceID, Quantity: in.Quantity}

	var v validation.Validator
	v.Add(
		validation.Required("clinic_id", in.ClinicID),
		validation.Required("product_id", in.ProductID),
		validation.Required("reference_id", in.ReferenceID),
	)
	err := v.Err()
	if err == nil && in.Quantity <= 0 {
		err = fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, in.Quantity)
	}
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionInventoryConsumed, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}

	out, err := uc.commit(ctx, "consume", in.ClinicID, in.ProductID, false, func(cur *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error) {
		now := uc.clock.Now()
		next, alloc, err := domaininv.ApplyConsume(cur, in.Quantity, in.ReferenceID, now)
		if err != nil {
			return nil, nil, err
		}
		d := details
		d.Debits = alloc.Debits
		return next, entry(in.Actor, entity.ActionInventoryConsumed, in.ClinicID, in.ProductID, now, d), nil
	})
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionInventoryConsumed, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}
	return &ConsumeResult{Record: out.Record, Debits: out.Entry.Details.Debits, Entry: out.Entry}, nil
}

// Adjust corrige cantidad o lotes por motivo administrativo.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput) (*entity.InventoryRecord, error) {
	if err := uc.authorize(ctx, in.Actor, in.ClinicID, in.ProductID, entity.PermInventoryAdjust); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, in)
}

func (uc *LedgerUseCase) adjust(ctx context.Context, in AdjustInput) (*entity.InventoryRecord, error) {
	details := entity.AuditDetails{ReferenceID: in.ReferenceID, Reason: in.Reason}
	if in.NewQuantity != nil {
		details.Quantity = *in.NewQuantity
	}

	lots := make([]entity.Lot, 0, len(in.Lots))
	var v validation.Validator
	v.Add(
		validation.Required("clinic_id", in.ClinicID),
		validation.Required("product_id", in.ProductID),
		validation.Required("reason", in.Reason),
	).Check(in.NewQuantity != nil || in.Lots != nil, "new_quantity", "se requiere cantidad o lotes")
	for i, l := range in.Lots {
		v.Add(
			validation.Required(fmt.Sprintf("lots[%d].lot_id", i), l.LotID),
			validation.Date(fmt.Sprintf("lots[%d].expiration_date", i), l.ExpirationDate),
			validation.NonNegative(fmt.Sprintf("lots[%d].quantity", i), l.Quantity),
		)
		l.ExpirationDate = clock.NormalizeDate(l.ExpirationDate)
		lots = append(lots, l)
	}
	if in.Lots == nil {
		lots = nil
	}
	if err := v.Err(); err != nil {
		uc.failed(ctx, in.Actor, entity.ActionInventoryAdjusted, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}

	out, err := uc.commit(ctx, "adjust", in.ClinicID, in.ProductID, false, func(cur *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error) {
		now := uc.clock.Now()
		next, err := domaininv.ApplyAdjust(cur, in.NewQuantity, lots, in.ReferenceID, now)
		if err != nil {
			return nil, nil, err
		}
		d := details
		d.Quantity = next.QuantityInStock - cur.QuantityInStock
		return next, entry(in.Actor, entity.ActionInventoryAdjusted, in.ClinicID, in.ProductID, now, d), nil
	})
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionInventoryAdjusted, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}
	return out.Record, nil
}

// DiscardExpired retira lotes vencidos.
func (uc *LedgerUseCase) DiscardExpired(ctx context.Context, in DiscardInput) (*DiscardResult, error) {
	if err := uc.authorize(ctx, in.Actor, in.ClinicID, in.ProductID, entity.PermInventoryDiscard); err != nil {
		return nil, err
	}
	details := entity.AuditDetails{ReferenceID: in.ReferenceID}
	if in.LotID != "" {
		details.Extra = map[string]any{"lot_id": in.LotID}
	}
	var v validation.Validator
	v.Add(validation.Required("clinic_id", in.ClinicID), validation.Required("product_id", in.ProductID))
	if err := v.Err(); err != nil {
		uc.failed(ctx, in.Actor, entity.ActionLotDiscarded, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}

	out, err := uc.commit(ctx, "discard", in.ClinicID, in.ProductID, false, func(cur *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error) {
		now := uc.clock.Now()
		next, removed, err := domaininv.ApplyDiscardExpired(cur, in.LotID, in.ReferenceID, now)
		if err != nil {
			return nil, nil, err
		}
		d := details
		d.Debits = removed
		d.Quantity = cur.QuantityInStock - next.QuantityInStock
		return next, entry(in.Actor, entity.ActionLotDiscarded, in.ClinicID, in.ProductID, now, d), nil
	})
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionLotDiscarded, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}
	return &DiscardResult{Record: out.Record, Removed: out.Entry.Details.Debits}, nil
}

// SetMinimumStock cambia el umbral de stock bajo de un registro existente.
func (uc *LedgerUseCase) SetMinimumStock(ctx context.Context, in ThresholdInput) (*entity.InventoryRecord, error) {
	if err := uc.authorize(ctx, in.Actor, in.ClinicID, in.ProductID, entity.PermInventoryAdjust); err != nil {
		return nil, err
	}
	details := entity.AuditDetails{Quantity: in.MinimumStockLevel}
	var v validation.Validator
	v.Add(
		validation.Required("clinic_id", in.ClinicID),
		validation.Required("product_id", in.ProductID),
		validation.NonNegative("minimum_stock_level", in.MinimumStockLevel),
	)
	if err := v.Err(); err != nil {
		uc.failed(ctx, in.Actor, entity.ActionThresholdUpdated, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}
	out, err := uc.commit(ctx, "threshold", in.ClinicID, in.ProductID, false, func(cur *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error) {
		now := uc.clock.Now()
		next, err := domaininv.ApplyMinimumStock(cur, in.MinimumStockLevel, now)
		if err != nil {
			return nil, nil, err
		}
		return next, entry(in.Actor, entity.ActionThresholdUpdated, in.ClinicID, in.ProductID, now, details), nil
	})
	if err != nil {
		uc.failed(ctx, in.Actor, entity.ActionThresholdUpdated, in.ClinicID, in.ProductID, details, err)
		return nil, err
	}
	return out.Record, nil
}

// GetRecord devuelve el registro de un producto.
func (uc *LedgerUseCase) GetRecord(ctx context.Context, actor entity.Actor, clinicID, productID string) (*entity.InventoryRecord, error) {
	if err := uc.authorize(ctx, actor, clinicID, productID, entity.PermInventoryRead); err != nil {
		return nil, err
	}
	var v validation.Validator
	v.Add(validation.Required("clinic_id", clinicID), validation.Required("product_id", productID))
	if err := v.Err(); err != nil {
		return nil, err
	}
	var rec *entity.InventoryRecord
	err := uc.ctrl.call(ctx, func(cctx context.Context) error {
		var err error
		rec, err = uc.repo.Get(cctx, clinicID, productID)
		return err
	})
	return rec, err
}

// ListRecords devuelve el stock de la clínica.
func (uc *LedgerUseCase) ListRecords(ctx context.Context, actor entity.Actor, clinicID string) ([]*entity.InventoryRecord, error) {
	return uc.list(ctx, actor, clinicID, uc.repo.ListByClinic)
}

// ListLowStock devuelve los registros con stock por debajo del mínimo.
func (uc *LedgerUseCase) ListLowStock(ctx context.Context, actor entity.Actor, clinicID string) ([]*entity.InventoryRecord, error) {
	return uc.list(ctx, actor, clinicID, uc.repo.ListLowStock)
}

func (uc *LedgerUseCase) list(ctx context.Context, actor entity.Actor, clinicID string, fetch func(context.Context, string) ([]*entity.InventoryRecord, error)) ([]*entity.InventoryRecord, error) {
	if err := uc.authorize(ctx, actor, clinicID, "", entity.PermInventoryRead); err != nil {
		return nil, err
	}
	var v validation.Validator
	v.Add(validation.Required("clinic_id", clinicID))
	if err := v.Err(); err != nil {
		return nil, err
	}
	var recs []*entity.InventoryRecord
	err := uc.ctrl.call(ctx, func(cctx context.Context) error {
		var err error
		recs, err = fetch(cctx, clinicID)
		return err
	})
	return recs, err
}
