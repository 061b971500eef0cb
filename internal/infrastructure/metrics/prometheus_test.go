package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/application/inventory"
	"github.com/jhoicas/clinic-ledger/internal/infrastructure/metrics"
)

var _ inventory.Metrics = (*metrics.Ledger)(nil)

func TestLedger_ExponeContadores(t *testing.T) {
	m := metrics.NewLedger("clinic")
	m.ObserveOperation("consume", "success", 15*time.Millisecond)
	m.ObserveOperation("consume", "conflict", 0)
	m.IncRetry("consume")
	m.IncRetry("consume")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `clinic_ledger_operations_total{operation="consume",outcome="success"} 1`)
	assert.Contains(t, out, `clinic_ledger_operations_total{operation="consume",outcome="conflict"} 1`)
	assert.Contains(t, out, `clinic_ledger_retries_total{operation="consume"} 2`)
	assert.Contains(t, out, `clinic_ledger_operation_duration_seconds_count{operation="consume"} 1`)
}
