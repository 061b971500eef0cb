package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/application/access"
	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/application/inventory"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/clinic-ledger/internal/interfaces/http"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
	pkgjwt "github.com/jhoicas/clinic-ledger/pkg/jwt"
)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("log-%06d", s.n.Add(1)) }

var (
	bodega  = pkgjwt.Identity{UserID: "u-bodega", ClinicID: "C1", Role: entity.RoleBodeguero}
	medico  = pkgjwt.Identity{UserID: "u-medico", ClinicID: "C1", Role: entity.RoleProfesional}
	admin   = pkgjwt.Identity{UserID: "u-admin", ClinicID: "C1", Role: entity.RoleAdmin}
	ajeno   = pkgjwt.Identity{UserID: "u-ajeno", ClinicID: "C2", Role: entity.RoleAdmin}
	sistema = pkgjwt.Identity{UserID: "cron", System: true}
)

type api struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	scope := access.NewScopeUseCase()
	trail := audit.NewTrailUseCase(store, scope, clk, &seqIDs{}, zerolog.Nop())
	m := metrics.NewLedger("test")
	policy := inventory.RetryPolicy{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, StoreTimeout: time.Second}
	ledger := inventory.NewLedgerUseCase(store, scope, trail, clk, policy, m, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Ledger: ledger, Trail: trail, Clock: clk, JWTSecret: testJWTSecret, Metrics: m.Handler()})
	return &api{app: app, store: store}
}

func (a *api) do(t *testing.T, id *pkgjwt.Identity, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		req.Header.Set("Authorization", tokenFor(t, *id))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else {
		out["raw"] = string(raw)
	}
	return resp, out
}

func (a *api) replenish(t *testing.T, product, lot, exp string, qty int) {
	t.Helper()
	resp, body := a.do(t, &bodega, http.MethodPost, "/api/inventory/"+product+"/replenish", map[string]any{
		"lot_id": lot, "expiration_date": exp, "quantity": qty, "reference_id": "FAC-" + lot,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
}

// ─── Inventario ─────────────────────────────────────────────────────────────

func TestAPI_ReponerYConsumir(t *testing.T) {
	a := newAPI(t)
	a.replenish(t, "P1", "A", "2026-06-30", 5)
	a.replenish(t, "P1", "B", "2026-09-30", 5)

	resp, body := a.do(t, &medico, http.MethodPost, "/api/inventory/P1/consume", map[string]any{"quantity": 7, "reference_id": "SOL-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	record := body["record"].(map[string]any)
	assert.EqualValues(t, 3, record["quantity_in_stock"])
	debits := body["debits"].([]any)
	require.Len(t, debits, 2)
	assert.Equal(t, "A", debits[0].(map[string]any)["lot_id"])

	resp, body = a.do(t, &medico, http.MethodGet, "/api/inventory/P1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lots := body["lots"].([]any)
	require.Len(t, lots, 1)
	assert.Equal(t, "2026-09-30", lots[0].(map[string]any)["expiration_date"])
}

func TestAPI_StockInsuficienteDevuelveFaltante(t *testing.T) {
	a := newAPI(t)
	a.replenish(t, "P1", "A", "2026-06-30", 2)

	resp, body := a.do(t, &medico, http.MethodPost, "/api/inventory/P1/consume", map[string]any{"quantity": 5, "reference_id": "SOL-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.EqualValues(t, 3, body["shortfall"])
}

func TestAPI_CodigosDeError(t *testing.T) {
	a := newAPI(t)

	resp, body := a.do(t, &bodega, http.MethodPost, "/api/inventory/P1/replenish", map[string]any{
		"lot_id": "A", "expiration_date": "2026-06-30", "quantity": 0, "reference_id": "F",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body["code"])

	resp, body = a.do(t, &medico, http.MethodGet, "/api/inventory/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, body = a.do(t, &medico, http.MethodPost, "/api/inventory/P1/replenish", map[string]any{
		"lot_id": "A", "expiration_date": "2026-06-30", "quantity": 1, "reference_id": "F",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	resp, _ = a.do(t, nil, http.MethodGet, "/api/inventory", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_OtraClinicaDenegadaYAuditada(t *testing.T) {
	a := newAPI(t)
	a.replenish(t, "P1", "A", "2026-06-30", 5)

	resp, _ := a.do(t, &ajeno, http.MethodPost, "/api/inventory/P1/consume", map[string]any{"clinic_id": "C1", "quantity": 1, "reference_id": "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	denied, _, err := a.store.Query(t.Context(), repository.AuditFilter{ActionType: entity.ActionAccessDenied})
	require.NoError(t, err)
	require.Len(t, denied, 1)
	assert.Equal(t, "u-ajeno", denied[0].ActorID)
}

func TestAPI_StockBajoYReposicion(t *testing.T) {
	a := newAPI(t)
	a.replenish(t, "P1", "A", "2026-12-31", 3)
	resp, body := a.do(t, &bodega, http.MethodPost, "/api/inventory/P1/adjust", map[string]any{"new_quantity": 2, "reason": "conteo"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	resp, body = a.do(t, &admin, http.MethodPost, "/api/inventory/P1/threshold", map[string]any{"minimum_stock_level": 10})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["low_stock"])

	resp, body = a.do(t, &bodega, http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])

	resp, body = a.do(t, &bodega, http.MethodGet, "/api/inventory/replenishment", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := body["replenishments"].([]any)
	require.Len(t, list, 1)
	assert.EqualValues(t, 13, list[0].(map[string]any)["suggested_order_qty"])
}

// ─── Orquestaciones ─────────────────────────────────────────────────────────

func TestAPI_SolicitudYFactura(t *testing.T) {
	a := newAPI(t)

	resp, body := a.do(t, &bodega, http.MethodPost, "/api/invoices/receive", map[string]any{
		"invoice_id": "FAC-9", "total_units": 8,
		"lines": []map[string]any{
			{"product_id": "P1", "lot_id": "L1", "expiration_date": "2026-08-01", "quantity": 5},
			{"product_id": "P2", "lot_id": "L2", "expiration_date": "2026-08-01", "quantity": 3},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Len(t, body["records"], 2)

	resp, body = a.do(t, &medico, http.MethodPost, "/api/requests/fulfil", map[string]any{
		"request_id": "SOL-7",
		"items":      []map[string]any{{"product_id": "P1", "quantity": 2}, {"product_id": "P2", "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.EqualValues(t, 3, items[0].(map[string]any)["quantity_in_stock"])
	assert.EqualValues(t, 0, items[1].(map[string]any)["quantity_in_stock"])
}

// ─── Auditoría ──────────────────────────────────────────────────────────────

func TestAPI_AuditoriaConsultaYExporta(t *testing.T) {
	a := newAPI(t)
	a.replenish(t, "P1", "A", "2026-06-30", 5)
	a.replenish(t, "P2", "B", "2026-06-30", 5)

	resp, body := a.do(t, &admin, http.MethodGet, "/api/audit?action_type=inventory_replenished&limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Len(t, body["entries"], 1)
	page := body["page"].(map[string]any)
	assert.EqualValues(t, 2, page["total"])
	assert.Equal(t, true, page["has_more"])

	resp, body = a.do(t, &admin, http.MethodGet, "/api/audit/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines := strings.Split(strings.TrimSpace(body["raw"].(string)), "\n")
	assert.Len(t, lines, 2)

	resp, _ = a.do(t, &medico, http.MethodGet, "/api/audit", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_CleanupSoloSistema(t *testing.T) {
	a := newAPI(t)

	resp, _ := a.do(t, &admin, http.MethodPost, "/api/audit/cleanup", map[string]any{"retention_days": 30, "dry_run": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := a.do(t, &sistema, http.MethodPost, "/api/audit/cleanup", map[string]any{"retention_days": 30, "dry_run": true})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["dry_run"])

	resp, body = a.do(t, &sistema, http.MethodPost, "/api/audit/reconcile", map[string]any{"clinic_id": "C1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "C1", body["clinic_id"])
}

func TestAPI_HealthYMetricas(t *testing.T) {
	a := newAPI(t)
	a.replenish(t, "P1", "A", "2026-06-30", 5)

	resp, body := a.do(t, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = a.do(t, nil, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["raw"], "test_ledger_operations_total")
}
