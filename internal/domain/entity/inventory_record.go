package entity

import (
	"sort"
	"time"
)

// Tipos de movimiento del resumen LastMovement.
const (
	MovementTypeIn     = "in"     // entrada (factura, reposición)
	MovementTypeOut    = "out"    // salida (consumo de solicitud)
	MovementTypeAdjust = "adjust" // ajuste administrativo o descarte
)

// Lot representa un lote de un producto con una sola fecha de vencimiento.
type Lot struct {
	LotID          string    `json:"lot_id"`
	ExpirationDate time.Time `json:"expiration_date"`
	Quantity       int       `json:"quantity"`
}

// ExpiredAt indica si el lote ya no puede consumirse en el instante now.
// Un lote es utilizable durante todo su día de vencimiento (UTC).
func (l Lot) ExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpirationDate.AddDate(0, 0, 1))
}

// LastMovement resumen desnormalizado del último cambio; solo para mostrar.
type LastMovement struct {
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	ReferenceID string    `json:"reference_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// InventoryRecord es el stock de un producto en una clínica, dividido en lotes.
// Version es el token de concurrencia optimista: 0 significa "aún no persistido".
type InventoryRecord struct {
	ClinicID          string        `json:"clinic_id"`
	ProductID         string        `json:"product_id"`
	QuantityInStock   int           `json:"quantity_in_stock"`
	MinimumStockLevel int           `json:"minimum_stock_level"`
	Lots              []Lot         `json:"lots"`
	Version           int64         `json:"version"`
	LastMovement      *LastMovement `json:"last_movement,omitempty"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// NewInventoryRecord crea el registro vacío de un par (clínica, producto).
func NewInventoryRecord(clinicID, productID string) *InventoryRecord {
	return &InventoryRecord{ClinicID: clinicID, ProductID: productID, Lots: []Lot{}}
}

// Clone copia profunda; los stores y el controlador nunca comparten slices.
func (r *InventoryRecord) Clone() *InventoryRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Lots = append([]Lot(nil), r.Lots...)
	if c.Lots == nil {
		c.Lots = []Lot{}
	}
	if r.LastMovement != nil {
		lm := *r.LastMovement
		c.LastMovement = &lm
	}
	return &c
}

// LotsTotal suma las cantidades de todos los lotes.
func (r *InventoryRecord) LotsTotal() int {
	total := 0
	for _, l := range r.Lots {
		total += l.Quantity
	}
	return total
}

// IsLowStock indica si el stock está por debajo del mínimo configurado.
func (r *InventoryRecord) IsLowStock() bool {
	return r.QuantityInStock < r.MinimumStockLevel
}

// FindLot devuelve el índice del lote o -1.
func (r *InventoryRecord) FindLot(lotID string) int {
	for i, l := range r.Lots {
		if l.LotID == lotID {
			return i
		}
	}
	return -1
}

// SetLots reemplaza los lotes, descarta los vacíos, los ordena por vencimiento
// y recalcula QuantityInStock.
func (r *InventoryRecord) SetLots(lots []Lot) {
	kept := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	SortLots(kept)
	r.Lots = kept
	r.QuantityInStock = r.LotsTotal()
}

// SortLots ordena por vencimiento ascendente y, a igual fecha, por LotID.
func SortLots(lots []Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].ExpirationDate.Equal(lots[j].ExpirationDate) {
			return lots[i].ExpirationDate.Before(lots[j].ExpirationDate)
		}
		return lots[i].LotID < lots[j].LotID
	})
}

// Snapshot es la foto de cantidades que se guarda en la auditoría.
type Snapshot struct {
	QuantityInStock   int   `json:"quantity_in_stock"`
	MinimumStockLevel int   `json:"minimum_stock_level"`
	Lots              []Lot `json:"lots"`
	Version           int64 `json:"version"`
}

// Snapshot captura el estado actual del registro.
func (r *InventoryRecord) Snapshot() *Snapshot {
	if r == nil {
		return nil
	}
	lots := append([]Lot(nil), r.Lots...)
	if lots == nil {
		lots = []Lot{}
	}
	return &Snapshot{
		QuantityInStock:   r.QuantityInStock,
		MinimumStockLevel: r.MinimumStockLevel,
		Lots:              lots,
		Version:           r.Version,
	}
}
