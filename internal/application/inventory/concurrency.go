package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
)

// RetryPolicy acota el ciclo leer-calcular-escribir.
type RetryPolicy struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	StoreTimeout time.Duration
}

// DefaultRetryPolicy 5 intentos, backoff exponencial con jitter entre 20ms y 500ms,
// 3s por llamada al store.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		BaseBackoff:  20 * time.Millisecond,
		MaxBackoff:   500 * time.Millisecond,
		StoreTimeout: 3 * time.Second,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = d.BaseBackoff
	}
	if p.MaxBackoff < p.BaseBackoff {
		p.MaxBackoff = p.BaseBackoff
	}
	if p.StoreTimeout <= 0 {
		p.StoreTimeout = d.StoreTimeout
	}
	return p
}

// Journal completa y consulta entradas de auditoría (lo implementa audit.TrailUseCase).
type Journal interface {
	// Stamp completa LogID y Timestamp si faltan.
	Stamp(entry *entity.AuditLogEntry)
	// Recorded indica si la entrada (por LogID) ya quedó persistida.
	Recorded(ctx context.Context, entry *entity.AuditLogEntry) (bool, error)
}

// Mutate calcula el nuevo estado a partir del actual y la entrada de auditoría
// que lo acompaña. Puede ejecutarse varias veces; no debe tener efectos.
type Mutate func(current *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error)

// Outcome resultado de una escritura confirmada.
type Outcome struct {
	Before   *entity.InventoryRecord
	Record   *entity.InventoryRecord
	Entry    *entity.AuditLogEntry
	Attempts int
}

// ConcurrencyController serializa los cambios de un registro con concurrencia
// optimista: lee con versión, calcula, escribe condicionado a esa versión junto
// con la entrada de auditoría y reintenta si otro escritor ganó.
type ConcurrencyController struct {
	repo    repository.InventoryRecordRepository
	journal Journal
	policy  RetryPolicy
	metrics Metrics
	log     zerolog.Logger
}

// NewConcurrencyController construye el controlador.
func NewConcurrencyController(repo repository.InventoryRecordRepository, journal Journal, policy RetryPolicy, metrics Metrics, log zerolog.Logger) *ConcurrencyController {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ConcurrencyController{repo: repo, journal: journal, policy: policy.normalized(), metrics: metrics, log: log}
}

// Policy devuelve la política efectiva.
func (c *ConcurrencyController) Policy() RetryPolicy { return c.policy }

// call ejecuta una llamada al store con su propio timeout.
func (c *ConcurrencyController) call(ctx context.Context, fn func(context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, c.policy.StoreTimeout)
	defer cancel()
	return storeError(fn(cctx))
}

// storeError traduce vencimientos de plazo a ErrStoreUnavailable.
func storeError(err error) error {
	if err == nil || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrStoreUnavailable)
}

func (c *ConcurrencyController) newBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.policy.BaseBackoff
	eb.MaxInterval = c.policy.MaxBackoff
	eb.RandomizationFactor = 0.5
	eb.Multiplier = 2
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithMaxRetries(eb, uint64(c.policy.MaxAttempts-1))
}

// inFlight escritura cuyo resultado se desconoce (el store falló o venció el
// plazo después de enviarla).
type inFlight struct {
	before *entity.InventoryRecord
	m      repository.Mutation
}

// landed decide si una escritura incierta quedó aplicada. Con entrada de
// auditoría se busca su LogID; sin ella sólo cuenta la versión.
func (c *ConcurrencyController) landed(ctx context.Context, p *inFlight, current *entity.InventoryRecord) (bool, error) {
	if current.Version < p.m.Record.Version {
		return false, nil
	}
	if p.m.Entry == nil {
		return current.Version == p.m.Record.Version, nil
	}
	var ok bool
	err := c.call(ctx, func(cctx context.Context) error {
		var err error
		ok, err = c.journal.Recorded(cctx, p.m.Entry)
		return err
	})
	return ok, err
}

// Execute aplica fn al registro (clinicID, productID). Si create es verdadero y
// el registro no existe, fn recibe uno nuevo con Version 0.
// La cancelación de ctx se respeta hasta el primer intento de escritura; desde
// ahí el ciclo sigue hasta confirmar o agotar los intentos.
// Todos los intentos comparten el LogID de la entrada. Si una escritura queda
// incierta, el siguiente intento relee: si la entrada ya existe se da por
// confirmada, si la versión no cambió se reenvía la misma mutación y si otro
// escritor avanzó se recalcula.
func (c *ConcurrencyController) Execute(ctx context.Context, op, clinicID, productID string, create bool, fn Mutate) (*Outcome, error) {
	start := time.Now()
	runCtx := ctx
	committing := false
	var out *Outcome
	var pending *inFlight
	logID := ""
	attempts := 0

	fail := func(err error) error {
		if !committing && ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if retryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	attempt := func() error {
		attempts++
		if !committing {
			if err := ctx.Err(); err != nil {
				return backoff.Permanent(err)
			}
		}

		var current *entity.InventoryRecord
		err := c.call(runCtx, func(cctx context.Context) error {
			var err error
			current, err = c.repo.Get(cctx, clinicID, productID)
			return err
		})
		switch {
		case errors.Is(err, domain.ErrNotFound) && create:
			current = entity.NewInventoryRecord(clinicID, productID)
		case err != nil:
			return fail(err)
		}

		var before *entity.InventoryRecord
		var m repository.Mutation
		resend := false
		if pending != nil {
			ok, err := c.landed(runCtx, pending, current)
			if err != nil {
				return fail(err)
			}
			if ok {
				c.log.Debug().Str("op", op).Str("clinic_id", clinicID).Str("product_id", productID).
					Msg("escritura incierta ya aplicada")
				out = &Outcome{Before: pending.before, Record: pending.m.Record, Entry: pending.m.Entry}
				return nil
			}
			if current.Version == pending.m.ExpectedVersion {
				before, m, resend = pending.before, pending.m, true
			}
			pending = nil
		}

		if !resend {
			next, entry, err := fn(current.Clone())
			if err != nil {
				return backoff.Permanent(err)
			}
			next.Version = current.Version + 1
			if entry != nil {
				if logID != "" {
					entry.LogID = logID
				}
				entry.Details.Before = current.Snapshot()
				entry.Details.After = next.Snapshot()
				c.journal.Stamp(entry)
				logID = entry.LogID
			}
			before = current
			m = repository.Mutation{Record: next, ExpectedVersion: current.Version, Entry: entry}
		}

		if !committing {
			if err := ctx.Err(); err != nil {
				return backoff.Permanent(err)
			}
			committing = true
			runCtx = context.WithoutCancel(ctx)
		}
		err = c.call(runCtx, func(cctx context.Context) error {
			return c.repo.Commit(cctx, m)
		})
		if err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				pending = &inFlight{before: before, m: m}
			}
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = &Outcome{Before: before, Record: m.Record, Entry: m.Entry}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.metrics.IncRetry(op)
		c.log.Debug().Err(err).Str("op", op).Str("clinic_id", clinicID).Str("product_id", productID).
			Int("attempt", attempts).Dur("wait", wait).Msg("reintentando escritura")
	}

	err := backoff.RetryNotify(attempt, c.newBackOff(), notify)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			c.log.Warn().Str("op", op).Str("clinic_id", clinicID).Str("product_id", productID).
				Int("attempts", attempts).Msg("conflicto de concurrencia persistente")
			err = fmt.Errorf("%w: %d intentos", domain.ErrConcurrencyConflict, attempts)
		}
		c.metrics.ObserveOperation(op, outcomeLabel(err), time.Since(start))
		return nil, err
	}
	out.Attempts = attempts
	c.metrics.ObserveOperation(op, outcomeLabel(nil), time.Since(start))
	return out, nil
}

// outcomeLabel etiqueta de métricas para un resultado.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
