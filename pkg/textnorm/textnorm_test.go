package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinic-ledger/pkg/textnorm"
)

func TestContains(t *testing.T) {
	tests := []struct {
		haystack, needle string
		want             bool
	}{
		{`{"reason":"Recuento físico anual"}`, "fisico", true},
		{"Reposición por FACTURA", "reposicion por factura", true},
		{"Ampolla de lidocaína", "LIDOCAINA", true},
		{"consumo", "ajuste", false},
		{"cualquier cosa", "", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, textnorm.Contains(tt.haystack, tt.needle), "%q en %q", tt.needle, tt.haystack)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "educacao", textnorm.Fold("Educação"))
}
