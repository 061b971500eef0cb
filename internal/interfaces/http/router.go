package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/application/inventory"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

// RouterDeps dependencias para el router. Metrics es opcional.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Trail     *audit.TrailUseCase
	Clock     clock.Clock
	JWTSecret string
	Metrics   nethttp.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Inventario. Las rutas fijas van antes de /:product_id.
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv.Get("/", inventoryHandler.List)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/replenishment", inventoryHandler.GetReplenishmentList)
	inv.Get("/:product_id", inventoryHandler.Get)
	inv.Post("/:product_id/replenish", inventoryHandler.Replenish)
	inv.Post("/:product_id/consume", inventoryHandler.Consume)
	inv.Post("/:product_id/adjust", inventoryHandler.Adjust)
	inv.Post("/:product_id/discard", inventoryHandler.Discard)
	inv.Post("/:product_id/threshold", inventoryHandler.SetThreshold)

	// Orquestaciones
	api.Post("/requests/fulfil", inventoryHandler.Fulfil)
	api.Post("/invoices/receive", inventoryHandler.ReceiveInvoice)

	// Auditoría
	auditGroup := api.Group("/audit")
	auditHandler := NewAuditHandler(deps.Trail, deps.Ledger, deps.Clock)
	auditGroup.Get("/", auditHandler.Query)
	auditGroup.Get("/export", auditHandler.Export)
	auditGroup.Post("/cleanup", auditHandler.Cleanup)
	auditGroup.Post("/reconcile", auditHandler.Reconcile)
}
