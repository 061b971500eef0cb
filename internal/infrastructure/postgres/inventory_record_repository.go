package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

const recordColumns = `clinic_id, product_id, quantity_in_stock, minimum_stock_level, lots, version, last_movement, updated_at`

// InventoryRecordRepo registros de inventario sobre PostgreSQL. Commit escribe el
// registro con UPDATE condicionado a la versión y la entrada de auditoría en la
// misma transacción.
type InventoryRecordRepo struct {
	pool *pgxpool.Pool
	tx   *TxRunner
}

// NewInventoryRecordRepository construye el adaptador.
func NewInventoryRecordRepository(pool *pgxpool.Pool) *InventoryRecordRepo {
	return &InventoryRecordRepo{pool: pool, tx: NewTxRunner(pool)}
}

// Get obtiene el registro (clínica, producto).
func (r *InventoryRecordRepo) Get(ctx context.Context, clinicID, productID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE clinic_id = $1 AND product_id = $2`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, clinicID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapErr("get inventory record", err)
	}
	return rec, nil
}

// ListByClinic lista los registros de la clínica.
func (r *InventoryRecordRepo) ListByClinic(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE clinic_id = $1 ORDER BY product_id`
	return r.list(ctx, "list inventory records", query, clinicID)
}

// ListLowStock lista los registros bajo su mínimo.
func (r *InventoryRecordRepo) ListLowStock(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records
		WHERE clinic_id = $1 AND quantity_in_stock < minimum_stock_level ORDER BY product_id`
	return r.list(ctx, "list low stock", query, clinicID)
}

func (r *InventoryRecordRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()
	out := make([]*entity.InventoryRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, rec)
	}
	return out, mapErr(op, rows.Err())
}

// Commit aplica la escritura condicional y la entrada de auditoría en una transacción.
func (r *InventoryRecordRepo) Commit(ctx context.Context, m repository.Mutation) error {
	return r.tx.Run(ctx, func(q Querier) error {
		return commitMutation(ctx, q, m)
	})
}

// commitMutation inserta (versión esperada 0) o actualiza condicionado a la
// versión y, si la fila cambió, agrega la entrada de auditoría.
func commitMutation(ctx context.Context, q Querier, m repository.Mutation) error {
	rec := m.Record
	lots, err := json.Marshal(rec.Lots)
	if err != nil {
		return fmt.Errorf("marshal lots: %w", err)
	}
	var lastMovement []byte
	if rec.LastMovement != nil {
		if lastMovement, err = json.Marshal(rec.LastMovement); err != nil {
			return fmt.Errorf("marshal last_movement: %w", err)
		}
	}

	var query string
	var args []any
	if m.ExpectedVersion == 0 {
		query = `INSERT INTO inventory_records (` + recordColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (clinic_id, product_id) DO NOTHING`
		args = []any{rec.ClinicID, rec.ProductID, rec.QuantityInStock, rec.MinimumStockLevel, lots, rec.Version, lastMovement, rec.UpdatedAt}
	} else {
		query = `UPDATE inventory_records
			SET quantity_in_stock = $3, minimum_stock_level = $4, lots = $5, version = $6,
			    last_movement = $7, updated_at = $8
			WHERE clinic_id = $1 AND product_id = $2 AND version = $9`
		args = []any{rec.ClinicID, rec.ProductID, rec.QuantityInStock, rec.MinimumStockLevel, lots, rec.Version, lastMovement, rec.UpdatedAt, m.ExpectedVersion}
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return mapErr("commit inventory record", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	if m.Entry != nil {
		return insertAudit(ctx, q, m.Entry)
	}
	return nil
}

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	var lots, lastMovement []byte
	if err := row.Scan(&rec.ClinicID, &rec.ProductID, &rec.QuantityInStock, &rec.MinimumStockLevel,
		&lots, &rec.Version, &lastMovement, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lots, &rec.Lots); err != nil {
		return nil, fmt.Errorf("unmarshal lots: %w", err)
	}
	if rec.Lots == nil {
		rec.Lots = []entity.Lot{}
	}
	if len(lastMovement) > 0 {
		rec.LastMovement = &entity.LastMovement{}
		if err := json.Unmarshal(lastMovement, rec.LastMovement); err != nil {
			return nil, fmt.Errorf("unmarshal last_movement: %w", err)
		}
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
