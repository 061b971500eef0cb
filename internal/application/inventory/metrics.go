package inventory

import "time"

// Metrics recibe las mediciones del libro (implementada con Prometheus en infraestructura).
type Metrics interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
	IncRetry(op string)
}

// NopMetrics descarta todo.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, string, time.Duration) {}
func (NopMetrics) IncRetry(string)                                {}
