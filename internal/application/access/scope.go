// Package access decide si un actor puede ejecutar una acción sobre una clínica.
package access

import (
	"strings"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

const (
	wildcard   = "*"
	superAdmin = "*:*"
)

// roleDefaults permisos que cada rol tiene sin necesidad de declararlos en el token.
var roleDefaults = map[string][]string{
	entity.RoleSystem: {superAdmin},
	entity.RoleAdmin:  {"inventory:*", entity.PermAuditRead, entity.PermAuditExport},
	entity.RoleBodeguero: {
		entity.PermInventoryRead,
		entity.PermInventoryReplenish,
		entity.PermInventoryAdjust,
		entity.PermInventoryDiscard,
	},
	entity.RoleProfesional: {entity.PermInventoryRead, entity.PermInventoryConsume},
}

// Scope es el alcance de lectura de un actor: todo el sistema o una sola clínica.
type Scope struct {
	Unrestricted bool
	ClinicID     string
}

// ScopeUseCase implementa AccessScope.
type ScopeUseCase struct{}

// NewScopeUseCase construye el caso de uso.
func NewScopeUseCase() *ScopeUseCase {
	return &ScopeUseCase{}
}

// Authorize devuelve nil si el actor puede ejecutar permission sobre clinicID,
// o un *domain.AuthorizationError. Un actor de sistema pasa siempre.
func (uc *ScopeUseCase) Authorize(actor entity.Actor, clinicID, permission string) error {
	if actor.System {
		return nil
	}
	deny := func(reason string) error {
		return &domain.AuthorizationError{ActorID: actor.ID, ClinicID: clinicID, Permission: permission, Reason: reason}
	}
	if actor.ID == "" {
		return deny("actor sin identificador")
	}
	if actor.ClinicID == "" {
		return deny("actor sin clínica asignada")
	}
	if clinicID != actor.ClinicID {
		return deny("la clínica no corresponde al actor")
	}
	if !HasPermission(actor, permission) {
		return deny("permiso no otorgado")
	}
	return nil
}

// ScopeFilter devuelve el alcance de consultas del actor.
func (uc *ScopeUseCase) ScopeFilter(actor entity.Actor) Scope {
	if actor.System {
		return Scope{Unrestricted: true}
	}
	return Scope{ClinicID: actor.ClinicID}
}

// HasPermission revisa los permisos por defecto del rol y los explícitos del actor.
func HasPermission(actor entity.Actor, requested string) bool {
	for _, p := range roleDefaults[actor.Role] {
		if matches(p, requested) {
			return true
		}
	}
	for _, p := range actor.Permissions {
		if matches(p, requested) {
			return true
		}
	}
	return false
}

// matches soporta "*:*" y comodín de acción ("inventory:*").
func matches(granted, requested string) bool {
	if granted == superAdmin || granted == requested {
		return true
	}
	res, act, ok := strings.Cut(granted, ":")
	if !ok {
		return false
	}
	reqRes, _, ok := strings.Cut(requested, ":")
	return ok && res == reqRes && act == wildcard
}
