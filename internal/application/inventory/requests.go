package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/clinic-ledger/internal/domain/inventory"
	"github.com/jhoicas/clinic-ledger/internal/domain/validation"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

// TreatmentItem producto y cantidad que pide un tratamiento.
type TreatmentItem struct {
	ProductID string
	Quantity  int
}

// TreatmentRequest solicitud de insumos de un profesional.
type TreatmentRequest struct {
	Actor     entity.Actor
	ClinicID  string
	RequestID string
	Items     []TreatmentItem
}

// FulfilledItem resultado por producto.
type FulfilledItem struct {
	ProductID string
	Quantity  int
	Debits    []entity.LotDebit
	Record    *entity.InventoryRecord
}

// FulfilmentResult resultado de una solicitud atendida completa.
type FulfilmentResult struct {
	RequestID string
	Items     []FulfilledItem
}

// InvoiceLine línea de una factura de proveedor.
type InvoiceLine struct {
	ProductID      string
	LotID          string
	ExpirationDate time.Time
	Quantity       int
}

// InvoiceReceipt recepción de una factura.
type InvoiceReceipt struct {
	Actor      entity.Actor
	ClinicID   string
	InvoiceID  string
	TotalUnits int
	Lines      []InvoiceLine
}

// ReceiptResult registros que quedaron tras la recepción, en el orden de las líneas.
type ReceiptResult struct {
	InvoiceID string
	Records   []*entity.InventoryRecord
}

// ReversalReference referencia usada al compensar una solicitud o factura.
func ReversalReference(id string) string { return "reversal:" + id }

// FulfilTreatmentRequest consume todos los ítems en paralelo (cada registro es
// independiente). Si alguno falla, los ítems ya consumidos se reponen en los
// mismos lotes que se debitaron y se devuelve el primer error.
func (uc *LedgerUseCase) FulfilTreatmentRequest(ctx context.Context, req TreatmentRequest) (*FulfilmentResult, error) {
	if err := uc.authorize(ctx, req.Actor, req.ClinicID, "", entity.PermInventoryConsume); err != nil {
		return nil, err
	}

	var v validation.Validator
	v.Add(validation.Required("clinic_id", req.ClinicID), validation.Required("request_id", req.RequestID)).
		Check(len(req.Items) > 0, "items", "la solicitud no tiene ítems")
	merged := make(map[string]int, len(req.Items))
	for i, it := range req.Items {
		v.Add(
			validation.Required(fmt.Sprintf("items[%d].product_id", i), it.ProductID),
			validation.Positive(fmt.Sprintf("items[%d].quantity", i), it.Quantity),
		)
		merged[it.ProductID] += it.Quantity
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	products := make([]string, 0, len(merged))
	for p := range merged {
		products = append(products, p)
	}
	sort.Strings(products)

	results := make([]*ConsumeResult, len(products))
	g, gctx := errgroup.WithContext(ctx)
	for i, productID := range products {
		g.Go(func() error {
			res, err := uc.consume(gctx, ConsumeInput{
				Actor:       req.Actor,
				ClinicID:    req.ClinicID,
				ProductID:   productID,
				Quantity:    merged[productID],
				ReferenceID: req.RequestID,
			})
			if err != nil {
				return fmt.Errorf("producto %s: %w", productID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if cerr := uc.compensate(ctx, req, results); cerr != nil {
			return nil, errors.Join(err, cerr)
		}
		return nil, err
	}

	out := &FulfilmentResult{RequestID: req.RequestID, Items: make([]FulfilledItem, 0, len(products))}
	for i, productID := range products {
		out.Items = append(out.Items, FulfilledItem{
			ProductID: productID,
			Quantity:  merged[productID],
			Debits:    results[i].Debits,
			Record:    results[i].Record,
		})
	}
	return out, nil
}

// compensate repone exactamente los lotes debitados por los ítems confirmados.
func (uc *LedgerUseCase) compensate(ctx context.Context, req TreatmentRequest, results []*ConsumeResult) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, res := range results {
		if res == nil {
			continue
		}
		expirations := make(map[string]time.Time)
		if res.Entry != nil && res.Entry.Details.Before != nil {
			for _, l := range res.Entry.Details.Before.Lots {
				expirations[l.LotID] = l.ExpirationDate
			}
		}
		for _, d := range res.Debits {
			_, err := uc.replenish(ctx, ReplenishInput{
				Actor:          req.Actor,
				ClinicID:       req.ClinicID,
				ProductID:      res.Record.ProductID,
				LotID:          d.LotID,
				ExpirationDate: expirations[d.LotID],
				Quantity:       d.QuantityDebited,
				ReferenceID:    ReversalReference(req.RequestID),
			})
			if err != nil {
				uc.log.Error().Err(err).Str("request_id", req.RequestID).Str("product_id", res.Record.ProductID).
					Str("lot_id", d.LotID).Msg("no se pudo revertir el consumo")
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("compensación incompleta: %w", errors.Join(errs...))
	}
	return nil
}

// ReceiveInvoice valida la factura completa (incluido que TotalUnits coincida con
// la suma de líneas) y repone cada línea. Si una línea falla, las anteriores se
// revierten sobre el mismo lote.
func (uc *LedgerUseCase) ReceiveInvoice(ctx context.Context, r InvoiceReceipt) (*ReceiptResult, error) {
	if err := uc.authorize(ctx, r.Actor, r.ClinicID, "", entity.PermInventoryReplenish); err != nil {
		return nil, err
	}

	var v validation.Validator
	v.Add(validation.Required("clinic_id", r.ClinicID), validation.Required("invoice_id", r.InvoiceID)).
		Check(len(r.Lines) > 0, "lines", "la factura no tiene líneas")
	sum := 0
	for i, l := range r.Lines {
		v.Add(
			validation.Required(fmt.Sprintf("lines[%d].product_id", i), l.ProductID),
			validation.Required(fmt.Sprintf("lines[%d].lot_id", i), l.LotID),
			validation.Date(fmt.Sprintf("lines[%d].expiration_date", i), l.ExpirationDate),
			validation.Positive(fmt.Sprintf("lines[%d].quantity", i), l.Quantity),
		)
		sum += l.Quantity
	}
	v.Check(r.TotalUnits == sum, "total_units", fmt.Sprintf("declara %d unidades y las líneas suman %d", r.TotalUnits, sum))
	if err := v.Err(); err != nil {
		return nil, err
	}

	out := &ReceiptResult{InvoiceID: r.InvoiceID, Records: make([]*entity.InventoryRecord, 0, len(r.Lines))}
	applied := make([]InvoiceLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		res, err := uc.replenish(ctx, ReplenishInput{
			Actor:          r.Actor,
			ClinicID:       r.ClinicID,
			ProductID:      l.ProductID,
			LotID:          l.LotID,
			ExpirationDate: l.ExpirationDate,
			Quantity:       l.Quantity,
			ReferenceID:    r.InvoiceID,
		})
		if err != nil {
			if cerr := uc.revertLines(ctx, r, applied); cerr != nil {
				return nil, errors.Join(err, cerr)
			}
			return nil, err
		}
		applied = append(applied, l)
		out.Records = append(out.Records, res.Record)
	}
	return out, nil
}

// errNothingToRevert el lote acreditado ya no existe o quedó en cero.
var errNothingToRevert = errors.New("nada que revertir")

// revertLines retira de cada lote lo que acreditó la factura. Si parte del lote ya
// se consumió, se retira lo que quede; si no queda nada, la línea se omite.
func (uc *LedgerUseCase) revertLines(ctx context.Context, r InvoiceReceipt, lines []InvoiceLine) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i]
		exp := clock.NormalizeDate(l.ExpirationDate)
		details := entity.AuditDetails{
			ReferenceID: ReversalReference(r.InvoiceID),
			Reason:      "reversión de factura " + r.InvoiceID,
			Extra:       map[string]any{"lot_id": l.LotID},
		}
		_, err := uc.commit(ctx, "adjust", r.ClinicID, l.ProductID, false, func(cur *entity.InventoryRecord) (*entity.InventoryRecord, *entity.AuditLogEntry, error) {
			now := uc.clock.Now()
			idx := cur.FindLot(l.LotID)
			if idx < 0 || !cur.Lots[idx].ExpirationDate.Equal(exp) || cur.Lots[idx].Quantity == 0 {
				return nil, nil, errNothingToRevert
			}
			lots := make([]entity.Lot, len(cur.Lots))
			copy(lots, cur.Lots)
			lots[idx].Quantity -= min(l.Quantity, lots[idx].Quantity)
			next, err := domaininv.ApplyAdjust(cur, nil, lots, details.ReferenceID, now)
			if err != nil {
				return nil, nil, err
			}
			d := details
			d.Quantity = next.QuantityInStock - cur.QuantityInStock
			return next, entry(r.Actor, entity.ActionInventoryAdjusted, r.ClinicID, l.ProductID, now, d), nil
		})
		if errors.Is(err, errNothingToRevert) {
			uc.log.Info().Str("invoice_id", r.InvoiceID).Str("product_id", l.ProductID).Str("lot_id", l.LotID).
				Msg("línea de factura sin saldo para revertir")
			continue
		}
		if err != nil {
			uc.log.Error().Err(err).Str("invoice_id", r.InvoiceID).Str("product_id", l.ProductID).
				Msg("no se pudo revertir la línea de factura")
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("reversión de factura incompleta: %w", errors.Join(errs...))
	}
	return nil
}
