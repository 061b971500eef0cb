package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/clinic-ledger/internal/domain/inventory"
)

// ExpiryHorizonDays ventana en la que un lote se considera "por vencer" al sugerir pedidos.
const ExpiryHorizonDays = 30

// ReplenishmentSuggestion sugerencia de pedido para un producto bajo su mínimo.
type ReplenishmentSuggestion struct {
	ProductID         string
	CurrentStock      int
	UsableStock       int // vigente y sin vencer dentro del horizonte
	MinimumStockLevel int
	IdealStock        int
	SuggestedOrderQty int
	Priority          int
}

// ReplenishmentList devuelve los productos bajo el mínimo con la cantidad sugerida
// de pedido. El stock que vence dentro de ExpiryHorizonDays no cuenta como
// disponible para el cálculo.
func (uc *LedgerUseCase) ReplenishmentList(ctx context.Context, actor entity.Actor, clinicID string) ([]ReplenishmentSuggestion, error) {
	records, err := uc.ListLowStock(ctx, actor, clinicID)
	if err != nil {
		return nil, err
	}
	horizon := uc.clock.Now().AddDate(0, 0, ExpiryHorizonDays)

	suggestions := make([]ReplenishmentSuggestion, 0, len(records))
	for _, rec := range records {
		usable := domaininv.AvailableAt(rec.Lots, horizon)
		ideal := rec.MinimumStockLevel * 3 / 2
		suggested := max(ideal-usable, 0)
		suggestions = append(suggestions, ReplenishmentSuggestion{
			ProductID:         rec.ProductID,
			CurrentStock:      rec.QuantityInStock,
			UsableStock:       usable,
			MinimumStockLevel: rec.MinimumStockLevel,
			IdealStock:        ideal,
			SuggestedOrderQty: suggested,
		})
	}

	// Primero el mayor déficit relativo al mínimo, luego el mayor pedido.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		da := (a.MinimumStockLevel - a.UsableStock) * b.MinimumStockLevel
		db := (b.MinimumStockLevel - b.UsableStock) * a.MinimumStockLevel
		if da != db {
			return da > db
		}
		if a.SuggestedOrderQty != b.SuggestedOrderQty {
			return a.SuggestedOrderQty > b.SuggestedOrderQty
		}
		return a.ProductID < b.ProductID
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
