package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/pkg/clock"
)

func TestMonotonic_NuncaRetrocede(t *testing.T) {
	c := clock.NewMonotonic()
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		next := c.Now()
		require.True(t, next.After(prev), "cada instante debe ser estrictamente mayor")
		assert.Equal(t, time.UTC, next.Location())
		prev = next
	}
}

func TestUUIDv7_OrdenLexicografico(t *testing.T) {
	gen := clock.UUIDv7{}
	prev := gen.NewID()
	for i := 0; i < 500; i++ {
		next := gen.NewID()
		assert.Less(t, prev, next, "los UUIDv7 deben ordenarse como se generan")
		prev = next
	}
}

func TestNormalizeDate_MedianocheUTC(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	in := time.Date(2025, 6, 1, 22, 30, 0, 0, loc)

	got := clock.NormalizeDate(in)

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got,
		"se conserva el día calendario de la entrada")
	assert.True(t, clock.NormalizeDate(time.Time{}).IsZero())
}

func TestParseDate(t *testing.T) {
	d, err := clock.ParseDate("2099-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = clock.ParseDate("2025-03-04T15:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), d)

	_, err = clock.ParseDate("04/03/2025")
	assert.Error(t, err)
}

func TestManual_Advance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := clock.NewManual(start)
	c.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), c.Now())
}
