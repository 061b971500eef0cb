package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/pkg/jwt"
)

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	in := jwt.Identity{UserID: "u1", ClinicID: "C1", Role: "bodeguero", Permissions: []string{"audit:read"}}
	tok, err := jwt.Generate("s3cr3t", "clinic-ledger", in, 5)
	require.NoError(t, err)

	out, err := jwt.Parse("s3cr3t", tok)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := jwt.Generate("uno", "x", jwt.Identity{UserID: "u1", ClinicID: "C1"}, 5)
	require.NoError(t, err)
	_, err = jwt.Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate("s", "x", jwt.Identity{UserID: "u1", ClinicID: "C1"}, -1)
	require.NoError(t, err)
	_, err = jwt.Parse("s", tok)
	assert.Error(t, err)
}

func TestParse_ClinicaObligatoriaSalvoSistema(t *testing.T) {
	tok, err := jwt.Generate("s", "x", jwt.Identity{UserID: "u1", Role: "admin"}, 5)
	require.NoError(t, err)
	_, err = jwt.Parse("s", tok)
	assert.Error(t, err)

	tok, err = jwt.Generate("s", "x", jwt.Identity{UserID: "cron", Role: "system", System: true}, 5)
	require.NoError(t, err)
	id, err := jwt.Parse("s", tok)
	require.NoError(t, err)
	assert.True(t, id.System)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "x", jwt.Identity{UserID: "u1"}, 5)
	assert.Error(t, err)
}
