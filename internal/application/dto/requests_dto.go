package dto

// TreatmentItemDTO producto y cantidad de una solicitud de tratamiento.
type TreatmentItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// FulfilRequest body para POST /api/requests/fulfil.
type FulfilRequest struct {
	ClinicID  string             `json:"clinic_id,omitempty"`
	RequestID string             `json:"request_id"`
	Items     []TreatmentItemDTO `json:"items"`
}

// FulfilledItemDTO resultado por producto.
type FulfilledItemDTO struct {
	ProductID       string        `json:"product_id"`
	Quantity        int           `json:"quantity"`
	Debits          []LotDebitDTO `json:"debits"`
	QuantityInStock int           `json:"quantity_in_stock"`
	LowStock        bool          `json:"low_stock"`
}

// FulfilResponse solicitud atendida.
type FulfilResponse struct {
	RequestID string             `json:"request_id"`
	Items     []FulfilledItemDTO `json:"items"`
}

// InvoiceLineDTO línea de factura de proveedor.
type InvoiceLineDTO struct {
	ProductID      string `json:"product_id"`
	LotID          string `json:"lot_id"`
	ExpirationDate Date   `json:"expiration_date" swaggertype:"string" format:"date"`
	Quantity       int    `json:"quantity"`
}

// InvoiceReceiveRequest body para POST /api/invoices/receive.
type InvoiceReceiveRequest struct {
	ClinicID   string           `json:"clinic_id,omitempty"`
	InvoiceID  string           `json:"invoice_id"`
	TotalUnits int              `json:"total_units"`
	Lines      []InvoiceLineDTO `json:"lines"`
}

// InvoiceReceiveResponse registros resultantes en el orden de las líneas.
type InvoiceReceiveResponse struct {
	InvoiceID string                    `json:"invoice_id"`
	Records   []InventoryRecordResponse `json:"records"`
}
