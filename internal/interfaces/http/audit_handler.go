package http

import (
	"bytes"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/application/dto"
	"github.com/jhoicas/clinic-ledger/internal/application/inventory"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

// AuditHandler consulta, exporta y depura la bitácora (protegido).
type AuditHandler struct {
	trail  *audit.TrailUseCase
	ledger *inventory.LedgerUseCase
	clock  clock.Clock
}

// NewAuditHandler construye el handler.
func NewAuditHandler(trail *audit.TrailUseCase, ledger *inventory.LedgerUseCase, clk clock.Clock) *AuditHandler {
	return &AuditHandler{trail: trail, ledger: ledger, clock: clk}
}

func (h *AuditHandler) filter(c *fiber.Ctx) (repository.AuditFilter, error) {
	var q dto.AuditQueryRequest
	if err := c.QueryParser(&q); err != nil {
		return repository.AuditFilter{}, err
	}
	f := repository.AuditFilter{
		ClinicID:     q.ClinicID,
		ActorID:      q.ActorID,
		ActionType:   q.ActionType,
		ResourceType: q.ResourceType,
		ResourceID:   q.ResourceID,
		Status:       q.Status,
		Text:         q.Q,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return f, err
		}
		f.From = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return f, err
		}
		f.To = &t
	}
	return f, nil
}

// Query godoc
// @Summary      Consultar la auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        action_type  query  string  false  "Tipo de acción"
// @Param        status       query  string  false  "success | error"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Param        q            query  string  false  "Texto libre sin tildes"
// @Param        limit        query  int     false  "Máximo 500"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.AuditPageResponse
// @Router       /api/audit [get]
func (h *AuditHandler) Query(c *fiber.Ctx) error {
	f, err := h.filter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	res, err := h.trail.Query(c.UserContext(), GetActor(c), f)
	if err != nil {
		return writeError(c, err)
	}
	limit := f.Limit
	if limit == 0 {
		limit = audit.DefaultLimit
	}
	return c.JSON(dto.AuditPageResponse{
		Entries: dto.FromAuditEntries(res.Entries),
		Page:    dto.PageResponse{Limit: min(limit, audit.MaxLimit), Offset: f.Offset, Total: res.TotalCount, HasMore: res.HasMore},
	})
}

// Export godoc
// @Summary      Exportar la auditoría
// @Description  NDJSON en orden cronológico. Con destination=s3 se sube al bucket configurado y se responde con la clave del objeto.
// @Tags         audit
// @Security     Bearer
// @Produce      application/x-ndjson
// @Param        destination  query  string  false  "s3"
// @Success      200
// @Router       /api/audit/export [get]
func (h *AuditHandler) Export(c *fiber.Ctx) error {
	f, err := h.filter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	actor := GetActor(c)
	if c.Query("destination") == "s3" {
		res, err := h.trail.ExportToSink(c.UserContext(), actor, f)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.AuditExportResponse{Key: res.Key, Count: res.Count})
	}
	var buf bytes.Buffer
	n, err := h.trail.Export(c.UserContext(), actor, f, &buf)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set("X-Export-Count", strconv.Itoa(n))
	return c.Send(buf.Bytes())
}

// Cleanup godoc
// @Summary      Depurar entradas antiguas (solo sistema)
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AuditCleanupRequest  true  "before o retention_days, dry_run"
// @Success      200  {object}  dto.AuditCleanupResponse
// @Router       /api/audit/cleanup [post]
func (h *AuditHandler) Cleanup(c *fiber.Ctx) error {
	var in dto.AuditCleanupRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var before time.Time
	switch {
	case in.Before != nil:
		before = *in.Before
	case in.RetentionDays > 0:
		before = h.clock.Now().AddDate(0, 0, -in.RetentionDays)
	}
	res, err := h.trail.Cleanup(c.UserContext(), GetActor(c), before, in.DryRun)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AuditCleanupResponse{Deleted: res.Deleted, DryRun: res.DryRun, Before: res.Before})
}

// Reconcile godoc
// @Summary      Reparar registros cuya versión no tiene rastro en la auditoría
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  false  "clinic_id (tokens de sistema)"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/audit/reconcile [post]
func (h *AuditHandler) Reconcile(c *fiber.Ctx) error {
	actor := GetActor(c)
	var in dto.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	res, err := h.ledger.Reconcile(c.UserContext(), actor, clinicFor(actor, in.ClinicID))
	if err != nil {
		return writeError(c, err)
	}
	repaired := res.Repaired
	if repaired == nil {
		repaired = []string{}
	}
	return c.JSON(dto.ReconcileResponse{ClinicID: res.ClinicID, Checked: res.Checked, Repaired: repaired})
}
