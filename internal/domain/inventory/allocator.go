package inventory

import (
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// Allocation es el resultado del asignador: qué lotes se debitan y cómo quedan.
type Allocation struct {
	Debits []entity.LotDebit
	Lots   []entity.Lot
}

// Total suma lo debitado.
func (a Allocation) Total() int {
	n := 0
	for _, d := range a.Debits {
		n += d.QuantityDebited
	}
	return n
}

// Allocate implementa FEFO (primero en vencer, primero en salir): ordena los lotes
// por vencimiento ascendente (empate por LotID), ignora los vencidos en now y debita
// min(restante, lote) hasta cubrir quantity. Es todo o nada y no modifica lots.
// Los lotes vencidos pasan intactos al resultado; descartarlos es otra operación.
func Allocate(lots []entity.Lot, quantity int, now time.Time) (Allocation, error) {
	if quantity <= 0 {
		return Allocation{}, domain.ErrInvalidQuantity
	}

	sorted := append([]entity.Lot(nil), lots...)
	entity.SortLots(sorted)

	available := 0
	for _, l := range sorted {
		if !l.ExpiredAt(now) {
			available += l.Quantity
		}
	}
	if available < quantity {
		return Allocation{}, domain.NewInsufficientStock(quantity, available)
	}

	remaining := quantity
	result := Allocation{Lots: make([]entity.Lot, 0, len(sorted))}
	for _, l := range sorted {
		if remaining == 0 || l.ExpiredAt(now) {
			result.Lots = append(result.Lots, l)
			continue
		}
		debit := min(remaining, l.Quantity)
		remaining -= debit
		result.Debits = append(result.Debits, entity.LotDebit{LotID: l.LotID, QuantityDebited: debit})
		if l.Quantity-debit > 0 {
			l.Quantity -= debit
			result.Lots = append(result.Lots, l)
		}
	}
	return result, nil
}

// AvailableAt suma el stock no vencido en now.
func AvailableAt(lots []entity.Lot, now time.Time) int {
	n := 0
	for _, l := range lots {
		if !l.ExpiredAt(now) {
			n += l.Quantity
		}
	}
	return n
}
