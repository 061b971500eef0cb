package docs_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/clinic-ledger/docs"
)

type openAPIDoc struct {
	Info struct {
		Title string `json:"title"`
	} `json:"info"`
	BasePath            string                    `json:"basePath"`
	Paths               map[string]map[string]any `json:"paths"`
	Definitions         map[string]any            `json:"definitions"`
	SecurityDefinitions map[string]any            `json:"securityDefinitions"`
}

func TestSwaggerDoc_RegistraLasRutas(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc openAPIDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "la plantilla debe producir JSON válido")
	assert.Equal(t, "Clinic Ledger API", doc.Info.Title)
	assert.Equal(t, "/", doc.BasePath)
	assert.Contains(t, doc.SecurityDefinitions, "Bearer")

	for path, method := range map[string]string{
		"/api/inventory/{product_id}/consume": "post",
		"/api/inventory/replenishment":        "get",
		"/api/requests/fulfil":                "post",
		"/api/invoices/receive":               "post",
		"/api/audit":                          "get",
		"/api/audit/cleanup":                  "post",
	} {
		require.Contains(t, doc.Paths, path)
		assert.Contains(t, doc.Paths[path], method, path)
	}
	assert.Contains(t, doc.Definitions, "dto.ErrorResponse")
}

func TestSwaggerJSON_CoincideConLoRegistrado(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var registered openAPIDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &registered))

	file, err := os.ReadFile("swagger.json")
	require.NoError(t, err)
	var served openAPIDoc
	require.NoError(t, json.Unmarshal(file, &served))

	assert.Equal(t, registered.Paths, served.Paths)
	assert.Equal(t, registered.Definitions, served.Definitions)
}
