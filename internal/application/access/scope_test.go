package access_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/application/access"
	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// ─── Authorize ──────────────────────────────────────────────────────────────

func TestAuthorize_SistemaPasaEnCualquierClinica(t *testing.T) {
	uc := access.NewScopeUseCase()
	assert.NoError(t, uc.Authorize(entity.SystemActor("cron"), "C9", entity.PermAuditCleanup))
}

func TestAuthorize_PorRol(t *testing.T) {
	uc := access.NewScopeUseCase()
	tests := []struct {
		name  string
		role  string
		perm  string
		allow bool
	}{
		{"admin consume por comodín", entity.RoleAdmin, entity.PermInventoryConsume, true},
		{"admin exporta auditoría", entity.RoleAdmin, entity.PermAuditExport, true},
		{"admin no limpia auditoría", entity.RoleAdmin, entity.PermAuditCleanup, false},
		{"bodeguero repone", entity.RoleBodeguero, entity.PermInventoryReplenish, true},
		{"bodeguero no consume", entity.RoleBodeguero, entity.PermInventoryConsume, false},
		{"profesional consume", entity.RoleProfesional, entity.PermInventoryConsume, true},
		{"profesional no ajusta", entity.RoleProfesional, entity.PermInventoryAdjust, false},
		{"rol desconocido", "visitante", entity.PermInventoryRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := entity.Actor{ID: "u1", ClinicID: "C1", Role: tt.role}
			err := uc.Authorize(actor, "C1", tt.perm)
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrForbidden)
		})
	}
}

func TestAuthorize_OtraClinicaDenegada(t *testing.T) {
	uc := access.NewScopeUseCase()
	actor := entity.Actor{ID: "u1", ClinicID: "C1", Role: entity.RoleAdmin}

	err := uc.Authorize(actor, "C2", entity.PermInventoryRead)

	var authErr *domain.AuthorizationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "C2", authErr.ClinicID)
	assert.Equal(t, entity.PermInventoryRead, authErr.Permission)
}

func TestAuthorize_PermisoExplicitoSeSumaAlRol(t *testing.T) {
	uc := access.NewScopeUseCase()
	actor := entity.Actor{ID: "u1", ClinicID: "C1", Role: entity.RoleProfesional, Permissions: []string{"audit:*"}}
	assert.NoError(t, uc.Authorize(actor, "C1", entity.PermAuditRead))
}

func TestAuthorize_ActorSinClinica(t *testing.T) {
	uc := access.NewScopeUseCase()
	err := uc.Authorize(entity.Actor{ID: "u1", Role: entity.RoleAdmin}, "", entity.PermInventoryRead)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ─── ScopeFilter ────────────────────────────────────────────────────────────

func TestScopeFilter(t *testing.T) {
	uc := access.NewScopeUseCase()
	assert.Equal(t, access.Scope{Unrestricted: true}, uc.ScopeFilter(entity.SystemActor("cron")))
	assert.Equal(t, access.Scope{ClinicID: "C1"}, uc.ScopeFilter(entity.Actor{ID: "u1", ClinicID: "C1"}))
}
