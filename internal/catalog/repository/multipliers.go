package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const multiplierColumns = `m.id, m.key, m.label, m.multiplier, m.display_order, m.is_active, m.created_at, m.updated_at`

func scanMultiplier(row pgx.Row) (Multiplier, error) {
	var m Multiplier
	err := row.Scan(&m.ID, &m.Key, &m.Label, &m.Multiplier, &m.DisplayOrder, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (k MultiplierKind) notFound() string {
	if k == InspectionPurpose {
		return "inspection purpose not found"
	}
	return "property age not found"
}

func (k MultiplierKind) conflict() string {
	if k == InspectionPurpose {
		return "inspection purpose key already exists"
	}
	return "property age key already exists"
}

func (r *Repo) ListMultipliers(ctx context.Context, kind MultiplierKind, params ListParams) ([]Multiplier, int, error) {
	where, args := filter("m", params, "key", "label")

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s m WHERE %s", kind.Table(), where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", kind.Table(), err)
	}

	args, page := pageArgs(args, params)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s m
		WHERE %s
		ORDER BY m.display_order, m.label
		%s`, multiplierColumns, kind.Table(), where, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", kind.Table(), err)
	}
	items, err := collect(rows, scanMultiplier, kind.Table())
	return items, total, err
}

func (r *Repo) ActiveMultipliers(ctx context.Context, kind MultiplierKind) ([]Multiplier, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM %s m WHERE m.is_active ORDER BY m.display_order, m.label`, multiplierColumns, kind.Table()))
	if err != nil {
		return nil, fmt.Errorf("active %s: %w", kind.Table(), err)
	}
	return collect(rows, scanMultiplier, kind.Table())
}

func (r *Repo) GetMultiplier(ctx context.Context, kind MultiplierKind, id uuid.UUID) (Multiplier, error) {
	m, err := scanMultiplier(r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s m WHERE m.id = $1`, multiplierColumns, kind.Table()), id))
	if err != nil {
		return Multiplier{}, readError("get "+string(kind), kind.notFound(), err)
	}
	return m, nil
}

func (r *Repo) CreateMultiplier(ctx context.Context, kind MultiplierKind, m Multiplier) (Multiplier, error) {
	created, err := scanMultiplier(r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s AS m (key, label, multiplier, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, kind.Table(), multiplierColumns),
		m.Key, m.Label, m.Multiplier, m.DisplayOrder, m.IsActive))
	if err != nil {
		return Multiplier{}, writeError("create "+string(kind), kind.notFound(), kind.conflict(), err)
	}
	return created, nil
}

func (r *Repo) UpdateMultiplier(ctx context.Context, kind MultiplierKind, m Multiplier) (Multiplier, error) {
	updated, err := scanMultiplier(r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s AS m
		SET key = $2, label = $3, multiplier = $4, display_order = $5, is_active = $6, updated_at = now()
		WHERE m.id = $1
		RETURNING %s`, kind.Table(), multiplierColumns),
		m.ID, m.Key, m.Label, m.Multiplier, m.DisplayOrder, m.IsActive))
	if err != nil {
		return Multiplier{}, writeError("update "+string(kind), kind.notFound(), kind.conflict(), err)
	}
	return updated, nil
}

func (r *Repo) DeactivateMultiplier(ctx context.Context, kind MultiplierKind, id uuid.UUID) error {
	return r.deactivate(ctx, kind.Table(), id, kind.notFound())
}
