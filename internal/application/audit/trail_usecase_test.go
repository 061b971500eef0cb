package audit_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/application/access"
	"github.com/jhoicas/clinic-ledger/internal/application/audit"
	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("log-%06d", s.n)
}

type memSink struct {
	keys   []string
	bodies [][]byte
}

func (s *memSink) Put(_ context.Context, key string, body []byte) error {
	s.keys = append(s.keys, key)
	s.bodies = append(s.bodies, body)
	return nil
}

type recordingPublisher struct{ published []string }

func (p *recordingPublisher) Publish(_ context.Context, e *entity.AuditLogEntry) error {
	p.published = append(p.published, e.LogID)
	return nil
}

var (
	start   = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	adminC1 = entity.Actor{ID: "a1", ClinicID: "C1", Role: entity.RoleAdmin}
	adminC2 = entity.Actor{ID: "a2", ClinicID: "C2", Role: entity.RoleAdmin}
	medico  = entity.Actor{ID: "m1", ClinicID: "C1", Role: entity.RoleProfesional}
	sistema = entity.SystemActor("retention")
)

func newTrail(t *testing.T, opts ...audit.Option) (*audit.TrailUseCase, *memory.Store, *clock.Manual) {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(start)
	return audit.NewTrailUseCase(store, access.NewScopeUseCase(), clk, &seqIDs{}, zerolog.Nop(), opts...), store, clk
}

// seed agrega n entradas por clínica, una por hora.
func seed(t *testing.T, uc *audit.TrailUseCase, clk *clock.Manual, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		for _, c := range []string{"C1", "C2"} {
			require.NoError(t, uc.Append(context.Background(), &entity.AuditLogEntry{
				ActorID:      "u-" + c,
				ClinicID:     entity.ClinicRef(c),
				ActionType:   entity.ActionInventoryConsumed,
				ResourceType: entity.ResourceInventoryRecord,
				ResourceID:   c + "/P1",
				Details:      entity.AuditDetails{ProductID: "P1", Reason: "Reposición física"},
			}))
		}
		clk.Advance(time.Hour)
	}
}

// ─── Append ─────────────────────────────────────────────────────────────────

func TestAppend_CompletaIdYHoraYPublica(t *testing.T) {
	pub := &recordingPublisher{}
	uc, _, _ := newTrail(t, audit.WithPublisher(pub))
	e := &entity.AuditLogEntry{ActorID: "u", ActionType: entity.ActionInventoryReplenished}

	require.NoError(t, uc.Append(context.Background(), e))
	assert.Equal(t, "log-000001", e.LogID)
	assert.Equal(t, start, e.Timestamp)
	assert.Equal(t, entity.SeverityInfo, e.Severity)
	assert.Equal(t, entity.StatusSuccess, e.Status)
	assert.Equal(t, []string{"log-000001"}, pub.published)
}

func TestAppend_SinActorEsInvalida(t *testing.T) {
	uc, _, _ := newTrail(t)
	err := uc.Append(context.Background(), &entity.AuditLogEntry{ActionType: entity.ActionInventoryReplenished})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Query ──────────────────────────────────────────────────────────────────

func TestQuery_AisladoPorClinicaYPaginado(t *testing.T) {
	uc, _, clk := newTrail(t)
	seed(t, uc, clk, 5)

	res, err := uc.Query(context.Background(), adminC1, repository.AuditFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCount)
	assert.True(t, res.HasMore)
	require.Len(t, res.Entries, 2)
	for _, e := range res.Entries {
		assert.Equal(t, "C1", e.ClinicIDValue())
	}
	assert.True(t, res.Entries[0].Timestamp.After(res.Entries[1].Timestamp))

	last, err := uc.Query(context.Background(), adminC1, repository.AuditFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, last.Entries, 1)
	assert.False(t, last.HasMore)
}

func TestQuery_OtraClinicaDenegadaYRegistrada(t *testing.T) {
	uc, store, clk := newTrail(t)
	seed(t, uc, clk, 1)

	_, err := uc.Query(context.Background(), adminC2, repository.AuditFilter{ClinicID: "C1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	denied, _, err := store.Query(context.Background(), repository.AuditFilter{ActionType: entity.ActionAccessDenied})
	require.NoError(t, err)
	require.Len(t, denied, 1)
	assert.Equal(t, "a2", denied[0].ActorID)
}

func TestQuery_ProfesionalSinPermiso(t *testing.T) {
	uc, _, _ := newTrail(t)
	_, err := uc.Query(context.Background(), medico, repository.AuditFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestQuery_TextoSinTildes(t *testing.T) {
	uc, _, clk := newTrail(t)
	seed(t, uc, clk, 2)

	res, err := uc.Query(context.Background(), adminC1, repository.AuditFilter{Text: "REPOSICION FISICA"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)

	res, err = uc.Query(context.Background(), adminC1, repository.AuditFilter{Text: "devolución"})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
}

func TestQuery_LimiteMaximoYDefecto(t *testing.T) {
	uc, _, clk := newTrail(t)
	seed(t, uc, clk, 60)

	res, err := uc.Query(context.Background(), sistema, repository.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Entries, audit.DefaultLimit)
	assert.Equal(t, 120, res.TotalCount)

	res, err = uc.Query(context.Background(), sistema, repository.AuditFilter{Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 120)
}

func TestQuery_RangoInvertido(t *testing.T) {
	uc, _, _ := newTrail(t)
	from, to := start.Add(time.Hour), start
	_, err := uc.Query(context.Background(), adminC1, repository.AuditFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Export ─────────────────────────────────────────────────────────────────

func TestExport_NDJSONCronologico(t *testing.T) {
	uc, _, clk := newTrail(t)
	seed(t, uc, clk, 3)

	var buf bytes.Buffer
	n, err := uc.Export(context.Background(), adminC1, repository.AuditFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var prev time.Time
	sc := bufio.NewScanner(&buf)
	lines := 0
	for sc.Scan() {
		var e entity.AuditLogEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		assert.Equal(t, "C1", e.ClinicIDValue())
		assert.False(t, e.Timestamp.Before(prev))
		prev = e.Timestamp
		lines++
	}
	assert.Equal(t, 3, lines)
}

func TestExportToSink_SubeYRegistra(t *testing.T) {
	sink := &memSink{}
	uc, store, clk := newTrail(t, audit.WithSink(sink))
	seed(t, uc, clk, 2)

	res, err := uc.ExportToSink(context.Background(), adminC1, repository.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, sink.keys, 1)
	assert.Contains(t, sink.keys[0], "audit/C1/")

	exported, _, err := store.Query(context.Background(), repository.AuditFilter{ActionType: entity.ActionAuditExported})
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Equal(t, res.Key, exported[0].ResourceID)
}

func TestExportToSink_SinDestino(t *testing.T) {
	uc, _, _ := newTrail(t)
	_, err := uc.ExportToSink(context.Background(), adminC1, repository.AuditFilter{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

// ─── Cleanup ────────────────────────────────────────────────────────────────

func TestCleanup_SoloSistema(t *testing.T) {
	uc, _, _ := newTrail(t)
	_, err := uc.Cleanup(context.Background(), adminC1, start, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCleanup_DryRunYBorradoConservaCleanup(t *testing.T) {
	uc, store, clk := newTrail(t)
	seed(t, uc, clk, 4) // 8 entradas en start, start+1h, start+2h, start+3h
	cutoff := start.Add(2 * time.Hour)

	dry, err := uc.Cleanup(context.Background(), sistema, cutoff, true)
	require.NoError(t, err)
	assert.Equal(t, 4, dry.Deleted)
	_, total, err := store.Query(context.Background(), repository.AuditFilter{ActionType: entity.ActionInventoryConsumed})
	require.NoError(t, err)
	assert.Equal(t, 8, total)

	done, err := uc.Cleanup(context.Background(), sistema, cutoff, false)
	require.NoError(t, err)
	assert.Equal(t, 4, done.Deleted)

	// Las entradas audit_cleanup sobreviven incluso a una depuración posterior.
	_, err = uc.Cleanup(context.Background(), sistema, start.Add(48*time.Hour), false)
	require.NoError(t, err)
	cleanups, _, err := store.Query(context.Background(), repository.AuditFilter{ActionType: entity.ActionAuditCleanup})
	require.NoError(t, err)
	assert.Len(t, cleanups, 3)
	for _, c := range cleanups {
		assert.Nil(t, c.ClinicID)
	}
}
