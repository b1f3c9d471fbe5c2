package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the audit repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Insert(ctx context.Context, params InsertParams) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, table_name, record_id, old_values, new_values, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.pool.Exec(ctx, query,
		params.ActorID, params.Action, params.TableName, params.RecordID,
		params.OldValues, params.NewValues, params.IPAddress, params.UserAgent,
	); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]Log, int, error) {
	whereClause, args := buildListFilter(params)
	argIdx := len(args) + 1

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_logs a WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT a.id, a.actor_id, u.email, a.action, a.table_name, a.record_id,
			a.old_values, a.new_values, a.ip_address, a.user_agent, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.actor_id
		WHERE %s
		ORDER BY a.created_at DESC, a.id
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	items := make([]Log, 0)
	for rows.Next() {
		var l Log
		if err := rows.Scan(
			&l.ID, &l.ActorID, &l.ActorEmail, &l.Action, &l.TableName, &l.RecordID,
			&l.OldValues, &l.NewValues, &l.IPAddress, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		items = append(items, l)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate audit logs: %w", rows.Err())
	}

	return items, total, nil
}

func buildListFilter(params ListParams) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.TableName != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.table_name = $%d", argIdx))
		args = append(args, params.TableName)
		argIdx++
	}
	if params.Action != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.action = $%d", argIdx))
		args = append(args, params.Action)
		argIdx++
	}
	if params.ActorID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("a.actor_id = $%d", argIdx))
		args = append(args, *params.ActorID)
		argIdx++
	}
	if params.RecordID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.record_id = $%d", argIdx))
		args = append(args, params.RecordID)
	}

	return strings.Join(whereClauses, " AND "), args
}
