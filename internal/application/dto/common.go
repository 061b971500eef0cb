package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// FieldError campo inválido de una entrada.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ErrorResponse cuerpo de error HTTP. Retryable indica que repetir la misma
// petición puede funcionar (conflicto agotado o store caído).
type ErrorResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Fields    []FieldError `json:"fields,omitempty"`
	Shortfall *int         `json:"shortfall,omitempty"`
	Retryable bool         `json:"retryable,omitempty"`
}

// dateLayout formato de fechas de vencimiento en la API.
const dateLayout = "2006-01-02"

// Date fecha de calendario; acepta "2006-01-02" o RFC3339 y se serializa como "2006-01-02".
type Date struct {
	time.Time
}

// UnmarshalJSON implementa json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("fecha inválida %q, se espera AAAA-MM-DD", s)
}

// MarshalJSON implementa json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(dateLayout))
}
