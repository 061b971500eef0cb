// Package clock provee la hora y los identificadores del libro de inventario.
// Todos los tiempos salen en UTC con precisión de microsegundos (la que guarda PostgreSQL).
package clock

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock entrega la hora actual.
type Clock interface {
	Now() time.Time
}

// IDGenerator entrega identificadores únicos y ordenables por tiempo.
type IDGenerator interface {
	NewID() string
}

// Monotonic es un Clock que nunca retrocede: si el reloj del sistema devuelve
// un instante igual o anterior al último entregado, avanza un microsegundo.
type Monotonic struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewMonotonic construye el reloj del sistema.
func NewMonotonic() *Monotonic {
	return &Monotonic{now: time.Now}
}

// Now devuelve un instante estrictamente mayor que el anterior.
func (m *Monotonic) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now().UTC().Truncate(time.Microsecond)
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

// Manual es un Clock controlado por tests.
type Manual struct {
	mu sync.Mutex
	t  time.Time
}

// NewManual crea un reloj detenido en t.
func NewManual(t time.Time) *Manual {
	return &Manual{t: t.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Advance mueve el reloj d hacia adelante.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.t = m.t.Add(d)
	m.mu.Unlock()
}

// Set fija la hora.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.t = t.UTC()
	m.mu.Unlock()
}

// UUIDv7 genera UUID versión 7: el prefijo es el timestamp en milisegundos y
// la librería garantiza orden creciente dentro del proceso.
type UUIDv7 struct{}

func (UUIDv7) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Solo falla si no hay entropía disponible.
		return uuid.NewString()
	}
	return id.String()
}

// NormalizeDate lleva una fecha de vencimiento a medianoche UTC del mismo día
// calendario. Es la única normalización de fechas en la entrada del subsistema.
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate acepta "2006-01-02" o RFC3339 y devuelve la fecha normalizada.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}
