package repository

import (
	"context"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
)

// Mutation es una escritura condicional: el registro se guarda solo si la versión
// almacenada sigue siendo ExpectedVersion (0 = el registro no debe existir), y la
// entrada de auditoría se guarda en la misma transacción.
type Mutation struct {
	Record          *entity.InventoryRecord
	ExpectedVersion int64
	Entry           *entity.AuditLogEntry
}

// InventoryRecordRepository define el puerto de persistencia de registros de inventario.
// Get devuelve domain.ErrNotFound si no existe; Commit devuelve domain.ErrVersionConflict
// si perdió la carrera y domain.ErrStoreUnavailable ante timeouts o fallas de E/S.
type InventoryRecordRepository interface {
	Get(ctx context.Context, clinicID, productID string) (*entity.InventoryRecord, error)
	ListByClinic(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error)
	ListLowStock(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error)
	Commit(ctx context.Context, m Mutation) error
}
