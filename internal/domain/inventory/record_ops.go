package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// Las funciones de este archivo calculan el nuevo estado de un registro sin
// tocar el original. No asignan Version: eso lo hace el ConcurrencyController.

// ApplyReplenish suma quantity al lote lotID. Mismo lote y misma fecha se fusionan;
// un lote nuevo se agrega; un lote existente con otra fecha es ErrLotConflict.
func ApplyReplenish(rec *entity.InventoryRecord, lotID string, expiration time.Time, quantity int, referenceID string, now time.Time) (*entity.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	next := rec.Clone()
	lots := next.Lots
	if i := next.FindLot(lotID); i >= 0 {
		if !lots[i].ExpirationDate.Equal(expiration) {
			return nil, fmt.Errorf("%w: lote %s vence %s, recibido %s", domain.ErrLotConflict, lotID,
				lots[i].ExpirationDate.Format(time.DateOnly), expiration.Format(time.DateOnly))
		}
		lots[i].Quantity += quantity
	} else {
		lots = append(lots, entity.Lot{LotID: lotID, ExpirationDate: expiration, Quantity: quantity})
	}
	next.SetLots(lots)
	next.LastMovement = &entity.LastMovement{Type: entity.MovementTypeIn, Quantity: quantity, ReferenceID: referenceID, Timestamp: now}
	next.UpdatedAt = now
	return next, nil
}

// ApplyConsume descuenta quantity con FEFO.
func ApplyConsume(rec *entity.InventoryRecord, quantity int, referenceID string, now time.Time) (*entity.InventoryRecord, Allocation, error) {
	alloc, err := Allocate(rec.Lots, quantity, now)
	if err != nil {
		return nil, Allocation{}, err
	}
	next := rec.Clone()
	next.SetLots(alloc.Lots)
	next.LastMovement = &entity.LastMovement{Type: entity.MovementTypeOut, Quantity: quantity, ReferenceID: referenceID, Timestamp: now}
	next.UpdatedAt = now
	return next, alloc, nil
}

// ApplyAdjust corrige el registro. Con lots reemplaza la distribución completa
// (y newQuantity, si viene, debe coincidir con la suma). Solo con newQuantity:
// una baja descuenta en orden de vencimiento incluyendo vencidos; un alza se
// acredita al lote que vence más tarde.
func ApplyAdjust(rec *entity.InventoryRecord, newQuantity *int, lots []entity.Lot, referenceID string, now time.Time) (*entity.InventoryRecord, error) {
	next := rec.Clone()
	before := rec.QuantityInStock

	switch {
	case lots != nil:
		seen := make(map[string]struct{}, len(lots))
		total := 0
		for _, l := range lots {
			if l.Quantity < 0 {
				return nil, domain.ErrInvalidQuantity
			}
			if _, dup := seen[l.LotID]; dup {
				return nil, fmt.Errorf("%w: lote %s repetido", domain.ErrInvalidInput, l.LotID)
			}
			seen[l.LotID] = struct{}{}
			total += l.Quantity
		}
		if newQuantity != nil && *newQuantity != total {
			return nil, fmt.Errorf("%w: la cantidad %d no coincide con la suma de lotes %d", domain.ErrInvalidInput, *newQuantity, total)
		}
		next.SetLots(append([]entity.Lot(nil), lots...))

	case newQuantity != nil:
		target := *newQuantity
		if target < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		current := next.LotsTotal()
		switch {
		case target < current:
			next.SetLots(debitInOrder(next.Lots, current-target))
		case target > current:
			if len(next.Lots) == 0 {
				return nil, fmt.Errorf("%w: un alza sin lotes requiere la distribución de lotes", domain.ErrInvalidInput)
			}
			lotsCopy := append([]entity.Lot(nil), next.Lots...)
			entity.SortLots(lotsCopy)
			lotsCopy[len(lotsCopy)-1].Quantity += target - current
			next.SetLots(lotsCopy)
		}

	default:
		return nil, fmt.Errorf("%w: el ajuste requiere cantidad o lotes", domain.ErrInvalidInput)
	}

	next.LastMovement = &entity.LastMovement{
		Type:        entity.MovementTypeAdjust,
		Quantity:    next.QuantityInStock - before,
		ReferenceID: referenceID,
		Timestamp:   now,
	}
	next.UpdatedAt = now
	return next, nil
}

// debitInOrder retira amount recorriendo los lotes por vencimiento, sin excluir vencidos.
func debitInOrder(lots []entity.Lot, amount int) []entity.Lot {
	sorted := append([]entity.Lot(nil), lots...)
	entity.SortLots(sorted)
	for i := range sorted {
		if amount == 0 {
			break
		}
		d := min(amount, sorted[i].Quantity)
		sorted[i].Quantity -= d
		amount -= d
	}
	return sorted
}

// ApplyDiscardExpired retira el lote vencido lotID, o todos los vencidos si lotID
// está vacío. Un lote vigente no se puede descartar por esta vía.
func ApplyDiscardExpired(rec *entity.InventoryRecord, lotID, referenceID string, now time.Time) (*entity.InventoryRecord, []entity.LotDebit, error) {
	var removed []entity.LotDebit
	kept := make([]entity.Lot, 0, len(rec.Lots))
	for _, l := range rec.Lots {
		match := lotID == "" || l.LotID == lotID
		if match && l.ExpiredAt(now) {
			removed = append(removed, entity.LotDebit{LotID: l.LotID, QuantityDebited: l.Quantity})
			continue
		}
		if match && lotID != "" {
			return nil, nil, fmt.Errorf("%w: el lote %s no está vencido", domain.ErrInvalidInput, lotID)
		}
		kept = append(kept, l)
	}
	if len(removed) == 0 {
		if lotID != "" {
			return nil, nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
		}
		return nil, nil, fmt.Errorf("%w: no hay lotes vencidos", domain.ErrInvalidInput)
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].LotID < removed[j].LotID })

	total := 0
	for _, d := range removed {
		total += d.QuantityDebited
	}
	next := rec.Clone()
	next.SetLots(kept)
	next.LastMovement = &entity.LastMovement{Type: entity.MovementTypeAdjust, Quantity: -total, ReferenceID: referenceID, Timestamp: now}
	next.UpdatedAt = now
	return next, removed, nil
}

// ApplyMinimumStock cambia el umbral de stock bajo.
func ApplyMinimumStock(rec *entity.InventoryRecord, level int, now time.Time) (*entity.InventoryRecord, error) {
	if level < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	next := rec.Clone()
	next.MinimumStockLevel = level
	next.UpdatedAt = now
	return next, nil
}
