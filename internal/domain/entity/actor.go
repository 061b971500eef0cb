package entity

// Roles conocidos.
const (
	RoleSystem      = "system"
	RoleAdmin       = "admin"
	RoleBodeguero   = "bodeguero"
	RoleProfesional = "profesional"
)

// Permisos con formato "recurso:acción".
const (
	PermInventoryRead      = "inventory:read"
	PermInventoryReplenish = "inventory:replenish"
	PermInventoryConsume   = "inventory:consume"
	PermInventoryAdjust    = "inventory:adjust"
	PermInventoryDiscard   = "inventory:discard"
	PermInventoryReconcile = "inventory:reconcile"
	PermAuditRead          = "audit:read"
	PermAuditExport        = "audit:export"
	PermAuditCleanup       = "audit:cleanup"
)

// Actor es quien ejecuta una operación. Un actor de sistema no está atado a
// ninguna clínica; uno de clínica solo opera sobre ClinicID.
type Actor struct {
	ID          string
	ClinicID    string
	Role        string
	Permissions []string
	System      bool
}

// SystemActor construye un actor de sistema (tareas programadas, reconciliación).
func SystemActor(id string) Actor {
	return Actor{ID: id, Role: RoleSystem, System: true}
}
