package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/pkg/textnorm"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

const auditColumns = `log_id, "timestamp", actor_id, clinic_id, action_type, resource_type, resource_id, details, severity, status`

// AuditLogRepo bitácora de auditoría sobre PostgreSQL.
type AuditLogRepo struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepo {
	return &AuditLogRepo{pool: pool}
}

// insertAudit escribe una entrada con q (pool o tx). search_text guarda el detalle
// normalizado para la búsqueda sin tildes.
func insertAudit(ctx context.Context, q Querier, e *entity.AuditLogEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	query := `INSERT INTO audit_logs (` + auditColumns + `, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = q.Exec(ctx, query, e.LogID, e.Timestamp, e.ActorID, e.ClinicID, e.ActionType,
		e.ResourceType, e.ResourceID, details, e.Severity, e.Status, textnorm.Fold(string(details)))
	return mapErr("insert audit log", err)
}

// Append agrega una entrada.
func (r *AuditLogRepo) Append(ctx context.Context, e *entity.AuditLogEntry) error {
	return insertAudit(ctx, r.pool, e)
}

// Contains consulta si el log_id ya está guardado.
func (r *AuditLogRepo) Contains(ctx context.Context, e *entity.AuditLogEntry) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM audit_logs WHERE log_id = $1)`, e.LogID).Scan(&ok)
	return ok, mapErr("lookup audit log", err)
}

// whereBuilder arma la cláusula WHERE con argumentos posicionales.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// likeEscaper escapa los comodines de LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildAuditWhere(f repository.AuditFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.ClinicID != "" {
		w.add("clinic_id = $%d", f.ClinicID)
	}
	if f.ActorID != "" {
		w.add("actor_id = $%d", f.ActorID)
	}
	if f.ActionType != "" {
		w.add("action_type = $%d", f.ActionType)
	}
	if f.ResourceType != "" {
		w.add("resource_type = $%d", f.ResourceType)
	}
	if f.ResourceID != "" {
		w.add("resource_id = $%d", f.ResourceID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.From != nil {
		w.add(`"timestamp" >= $%d`, *f.From)
	}
	if f.To != nil {
		w.add(`"timestamp" <= $%d`, *f.To)
	}
	if f.Text != "" {
		w.add(`search_text LIKE '%%' || $%d || '%%'`, likeEscaper.Replace(textnorm.Fold(f.Text)))
	}
	return w
}

// Query devuelve la página pedida, más reciente primero, y el total.
func (r *AuditLogRepo) Query(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLogEntry, int, error) {
	w := buildAuditWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM audit_logs`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapErr("count audit logs", err)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.sql() + ` ORDER BY "timestamp" DESC, log_id DESC`
	args := w.args
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	out := make([]*entity.AuditLogEntry, 0)
	err := r.scan(ctx, query, args, func(e *entity.AuditLogEntry) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Stream recorre las coincidencias en orden cronológico.
func (r *AuditLogRepo) Stream(ctx context.Context, f repository.AuditFilter, fn func(*entity.AuditLogEntry) error) error {
	w := buildAuditWhere(f)
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.sql() + ` ORDER BY "timestamp" ASC, log_id ASC`
	return r.scan(ctx, query, w.args, fn)
}

func (r *AuditLogRepo) scan(ctx context.Context, query string, args []any, fn func(*entity.AuditLogEntry) error) error {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return mapErr("query audit logs", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return mapErr("scan audit log", err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return mapErr("query audit logs", rows.Err())
}

func scanAudit(row pgx.Row) (*entity.AuditLogEntry, error) {
	var e entity.AuditLogEntry
	var details []byte
	if err := row.Scan(&e.LogID, &e.Timestamp, &e.ActorID, &e.ClinicID, &e.ActionType,
		&e.ResourceType, &e.ResourceID, &details, &e.Severity, &e.Status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &e.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}

// DeleteBefore borra (o cuenta) las entradas anteriores a before salvo audit_cleanup.
func (r *AuditLogRepo) DeleteBefore(ctx context.Context, before time.Time, dryRun bool) (int, error) {
	const where = ` FROM audit_logs WHERE "timestamp" < $1 AND action_type <> $2`
	if dryRun {
		var n int
		err := r.pool.QueryRow(ctx, `SELECT count(*)`+where, before, entity.ActionAuditCleanup).Scan(&n)
		return n, mapErr("count expired audit logs", err)
	}
	tag, err := r.pool.Exec(ctx, `DELETE`+where, before, entity.ActionAuditCleanup)
	if err != nil {
		return 0, mapErr("delete audit logs", err)
	}
	return int(tag.RowsAffected()), nil
}
