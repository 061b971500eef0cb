package dto

import (
	"time"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// LotDTO lote de un producto.
type LotDTO struct {
	LotID          string `json:"lot_id"`
	ExpirationDate Date   `json:"expiration_date" swaggertype:"string" format:"date"`
	Quantity       int    `json:"quantity"`
}

// ReplenishRequest body para POST /api/inventory/:product_id/replenish.
// ClinicID solo lo usan los tokens de sistema; los de clínica toman la del token.
type ReplenishRequest struct {
	ClinicID       string `json:"clinic_id,omitempty"`
	LotID          string `json:"lot_id"`
	ExpirationDate Date   `json:"expiration_date" swaggertype:"string" format:"date"`
	Quantity       int    `json:"quantity"`
	ReferenceID    string `json:"reference_id"`
}

// ConsumeRequest body para POST /api/inventory/:product_id/consume.
type ConsumeRequest struct {
	ClinicID    string `json:"clinic_id,omitempty"`
	Quantity    int    `json:"quantity"`
	ReferenceID string `json:"reference_id"`
}

// AdjustRequest body para POST /api/inventory/:product_id/adjust.
// Lots, si viene, reemplaza la distribución completa; si no, NewQuantity.
type AdjustRequest struct {
	ClinicID    string   `json:"clinic_id,omitempty"`
	NewQuantity *int     `json:"new_quantity,omitempty"`
	Lots        []LotDTO `json:"lots,omitempty"`
	Reason      string   `json:"reason"`
	ReferenceID string   `json:"reference_id,omitempty"`
}

// DiscardRequest body para POST /api/inventory/:product_id/discard.
type DiscardRequest struct {
	ClinicID    string `json:"clinic_id,omitempty"`
	LotID       string `json:"lot_id,omitempty"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// ThresholdRequest body para POST /api/inventory/:product_id/threshold.
type ThresholdRequest struct {
	ClinicID          string `json:"clinic_id,omitempty"`
	MinimumStockLevel int    `json:"minimum_stock_level"`
}

// LastMovementDTO resumen del último movimiento.
type LastMovementDTO struct {
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	ReferenceID string    `json:"reference_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// InventoryRecordResponse registro de inventario.
type InventoryRecordResponse struct {
	ClinicID          string           `json:"clinic_id"`
	ProductID         string           `json:"product_id"`
	QuantityInStock   int              `json:"quantity_in_stock"`
	MinimumStockLevel int              `json:"minimum_stock_level"`
	LowStock          bool             `json:"low_stock"`
	Lots              []LotDTO         `json:"lots"`
	Version           int64            `json:"version"`
	LastMovement      *LastMovementDTO `json:"last_movement,omitempty"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// LotDebitDTO cantidad descontada de un lote.
type LotDebitDTO struct {
	LotID    string `json:"lot_id"`
	Quantity int    `json:"quantity"`
}

// ConsumeResponse registro resultante y lotes debitados.
type ConsumeResponse struct {
	Record InventoryRecordResponse `json:"record"`
	Debits []LotDebitDTO           `json:"debits"`
}

// DiscardResponse registro resultante y lotes retirados.
type DiscardResponse struct {
	Record  InventoryRecordResponse `json:"record"`
	Removed []LotDebitDTO           `json:"removed"`
}

// ReplenishmentSuggestionDTO sugerencia de pedido para un producto bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID         string `json:"product_id"`
	CurrentStock      int    `json:"current_stock"`
	UsableStock       int    `json:"usable_stock"`
	MinimumStockLevel int    `json:"minimum_stock_level"`
	IdealStock        int    `json:"ideal_stock"`         // mínimo * 1.5
	SuggestedOrderQty int    `json:"suggested_order_qty"` // ideal - utilizable
	Priority          int    `json:"priority"`            // 1 = más urgente
}

// LotsFromDTO convierte lotes de la API al dominio.
func LotsFromDTO(in []LotDTO) []entity.Lot {
	if in == nil {
		return nil
	}
	out := make([]entity.Lot, 0, len(in))
	for _, l := range in {
		out = append(out, entity.Lot{LotID: l.LotID, ExpirationDate: l.ExpirationDate.Time, Quantity: l.Quantity})
	}
	return out
}

// Debits convierte los débitos del dominio.
func Debits(in []entity.LotDebit) []LotDebitDTO {
	out := make([]LotDebitDTO, 0, len(in))
	for _, d := range in {
		out = append(out, LotDebitDTO{LotID: d.LotID, Quantity: d.QuantityDebited})
	}
	return out
}

// FromRecord convierte un registro a respuesta.
func FromRecord(r *entity.InventoryRecord) InventoryRecordResponse {
	lots := make([]LotDTO, 0, len(r.Lots))
	for _, l := range r.Lots {
		lots = append(lots, LotDTO{LotID: l.LotID, ExpirationDate: Date{l.ExpirationDate}, Quantity: l.Quantity})
	}
	out := InventoryRecordResponse{
		ClinicID:          r.ClinicID,
		ProductID:         r.ProductID,
		QuantityInStock:   r.QuantityInStock,
		MinimumStockLevel: r.MinimumStockLevel,
		LowStock:          r.IsLowStock(),
		Lots:              lots,
		Version:           r.Version,
		UpdatedAt:         r.UpdatedAt,
	}
	if lm := r.LastMovement; lm != nil {
		out.LastMovement = &LastMovementDTO{Type: lm.Type, Quantity: lm.Quantity, ReferenceID: lm.ReferenceID, Timestamp: lm.Timestamp}
	}
	return out
}

// FromRecords convierte una lista de registros.
func FromRecords(in []*entity.InventoryRecord) []InventoryRecordResponse {
	out := make([]InventoryRecordResponse, 0, len(in))
	for _, r := range in {
		out = append(out, FromRecord(r))
	}
	return out
}
