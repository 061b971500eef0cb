// Package metrics expone las métricas del libro de inventario en formato Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ledger cuenta operaciones por resultado, su latencia y los reintentos del
// control de concurrencia.
type Ledger struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	retries    *prometheus.CounterVec
}

// NewLedger registra las métricas en un registro propio junto con las del proceso.
func NewLedger(namespace string) *Ledger {
	reg := prometheus.NewRegistry()
	m := &Ledger{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Operaciones del libro de inventario por tipo y resultado.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_operation_duration_seconds",
			Help:      "Duración de las operaciones del libro, reintentos incluidos.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"operation"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_retries_total",
			Help:      "Reintentos por conflicto de versión o store no disponible.",
		}, []string{"operation"}),
	}
	reg.MustRegister(
		m.operations, m.latency, m.retries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOperation registra el resultado de una operación.
func (m *Ledger) ObserveOperation(op, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(op, outcome).Inc()
	if elapsed > 0 {
		m.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}

// IncRetry cuenta un reintento.
func (m *Ledger) IncRetry(op string) {
	m.retries.WithLabelValues(op).Inc()
}

// Handler sirve /metrics.
func (m *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
