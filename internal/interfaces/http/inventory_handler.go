package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinic-ledger/internal/application/dto"
	"github.com/jhoicas/clinic-ledger/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Replenish godoc
// @Summary      Reponer stock (entrada de un lote)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                true  "Producto"
// @Param        body        body  dto.ReplenishRequest  true  "lot_id, expiration_date, quantity, reference_id"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{product_id}/replenish [post]
func (h *InventoryHandler) Replenish(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.ReplenishRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.ledger.Replenish(c.UserContext(), inventory.ReplenishInput{
		Actor:          actor,
		ClinicID:       clinicFor(actor, in.ClinicID),
		ProductID:      c.Params("product_id"),
		LotID:          in.LotID,
		ExpirationDate: in.ExpirationDate.Time,
		Quantity:       in.Quantity,
		ReferenceID:    in.ReferenceID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromRecord(rec))
}

// Consume godoc
// @Summary      Consumir stock (FEFO)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string              true  "Producto"
// @Param        body        body  dto.ConsumeRequest  true  "quantity, reference_id"
// @Success      200  {object}  dto.ConsumeResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK con shortfall, o CONCURRENCY_CONFLICT"
// @Router       /api/inventory/{product_id}/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.Consume(c.UserContext(), inventory.ConsumeInput{
		Actor:       actor,
		ClinicID:    clinicFor(actor, in.ClinicID),
		ProductID:   c.Params("product_id"),
		Quantity:    in.Quantity,
		ReferenceID: in.ReferenceID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConsumeResponse{Record: dto.FromRecord(res.Record), Debits: dto.Debits(res.Debits)})
}

// Adjust godoc
// @Summary      Ajuste administrativo (conteo físico)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string             true  "Producto"
// @Param        body        body  dto.AdjustRequest  true  "new_quantity o lots, reason"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Router       /api/inventory/{product_id}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.ledger.Adjust(c.UserContext(), inventory.AdjustInput{
		Actor:       actor,
		ClinicID:    clinicFor(actor, in.ClinicID),
		ProductID:   c.Params("product_id"),
		NewQuantity: in.NewQuantity,
		Lots:        dto.LotsFromDTO(in.Lots),
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromRecord(rec))
}

// Discard godoc
// @Summary      Retirar lotes vencidos
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string              true  "Producto"
// @Param        body        body  dto.DiscardRequest  false "lot_id (vacío = todos los vencidos)"
// @Success      200  {object}  dto.DiscardResponse
// @Router       /api/inventory/{product_id}/discard [post]
func (h *InventoryHandler) Discard(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.DiscardRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.ledger.DiscardExpired(c.UserContext(), inventory.DiscardInput{
		Actor:       actor,
		ClinicID:    clinicFor(actor, in.ClinicID),
		ProductID:   c.Params("product_id"),
		LotID:       in.LotID,
		ReferenceID: in.ReferenceID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DiscardResponse{Record: dto.FromRecord(res.Record), Removed: dto.Debits(res.Removed)})
}

// SetThreshold godoc
// @Summary      Configurar stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                true  "Producto"
// @Param        body        body  dto.ThresholdRequest  true  "minimum_stock_level"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Router       /api/inventory/{product_id}/threshold [post]
func (h *InventoryHandler) SetThreshold(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.ThresholdRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.ledger.SetMinimumStock(c.UserContext(), inventory.ThresholdInput{
		Actor:             actor,
		ClinicID:          clinicFor(actor, in.ClinicID),
		ProductID:         c.Params("product_id"),
		MinimumStockLevel: in.MinimumStockLevel,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromRecord(rec))
}

// Get godoc
// @Summary      Obtener el registro de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "Producto"
// @Param        clinic_id   query  string  false  "Solo tokens de sistema"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{product_id} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	actor := GetActor(c)
	rec, err := h.ledger.GetRecord(c.UserContext(), actor, clinicFor(actor, c.Query("clinic_id")), c.Params("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromRecord(rec))
}

// List godoc
// @Summary      Listar registros de la clínica
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InventoryRecordResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	actor := GetActor(c)
	list, err := h.ledger.ListRecords(c.UserContext(), actor, clinicFor(actor, c.Query("clinic_id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "records": dto.FromRecords(list)})
}

// LowStock godoc
// @Summary      Registros bajo su stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InventoryRecordResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	actor := GetActor(c)
	list, err := h.ledger.ListLowStock(c.UserContext(), actor, clinicFor(actor, c.Query("clinic_id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "records": dto.FromRecords(list)})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos bajo su mínimo con la cantidad sugerida de pedido. El stock que vence en los próximos 30 días no cuenta como disponible.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	actor := GetActor(c)
	list, err := h.ledger.ReplenishmentList(c.UserContext(), actor, clinicFor(actor, c.Query("clinic_id")))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:         s.ProductID,
			CurrentStock:      s.CurrentStock,
			UsableStock:       s.UsableStock,
			MinimumStockLevel: s.MinimumStockLevel,
			IdealStock:        s.IdealStock,
			SuggestedOrderQty: s.SuggestedOrderQty,
			Priority:          s.Priority,
		})
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

// Fulfil godoc
// @Summary      Atender una solicitud de tratamiento (todo o nada)
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FulfilRequest  true  "request_id, items"
// @Success      200  {object}  dto.FulfilResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/fulfil [post]
func (h *InventoryHandler) Fulfil(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.FulfilRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]inventory.TreatmentItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.TreatmentItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.ledger.FulfilTreatmentRequest(c.UserContext(), inventory.TreatmentRequest{
		Actor:     actor,
		ClinicID:  clinicFor(actor, in.ClinicID),
		RequestID: in.RequestID,
		Items:     items,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.FulfilResponse{RequestID: res.RequestID, Items: make([]dto.FulfilledItemDTO, 0, len(res.Items))}
	for _, it := range res.Items {
		out.Items = append(out.Items, dto.FulfilledItemDTO{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			Debits:          dto.Debits(it.Debits),
			QuantityInStock: it.Record.QuantityInStock,
			LowStock:        it.Record.IsLowStock(),
		})
	}
	return c.JSON(out)
}

// ReceiveInvoice godoc
// @Summary      Recibir factura de proveedor
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InvoiceReceiveRequest  true  "invoice_id, total_units, lines"
// @Success      201  {object}  dto.InvoiceReceiveResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/invoices/receive [post]
func (h *InventoryHandler) ReceiveInvoice(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.InvoiceReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.InvoiceLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.InvoiceLine{
			ProductID:      l.ProductID,
			LotID:          l.LotID,
			ExpirationDate: l.ExpirationDate.Time,
			Quantity:       l.Quantity,
		})
	}
	res, err := h.ledger.ReceiveInvoice(c.UserContext(), inventory.InvoiceReceipt{
		Actor:      actor,
		ClinicID:   clinicFor(actor, in.ClinicID),
		InvoiceID:  in.InvoiceID,
		TotalUnits: in.TotalUnits,
		Lines:      lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InvoiceReceiveResponse{InvoiceID: res.InvoiceID, Records: dto.FromRecords(res.Records)})
}
