package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ruleNotFoundMessage = "calculation rule not found"

const ruleColumns = `r.id, r.key, r.value, r.value_type, r.description, r.display_order, r.is_active, r.created_at, r.updated_at`

func scanRule(row pgx.Row) (CalculationRule, error) {
	var c CalculationRule
	err := row.Scan(&c.ID, &c.Key, &c.Value, &c.ValueType, &c.Description, &c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) ListRules(ctx context.Context, params ListParams) ([]CalculationRule, int, error) {
	where, args := filter("r", params, "key", "description")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM calculation_rules r WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calculation rules: %w", err)
	}

	args, page := pageArgs(args, params)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM calculation_rules r
		WHERE %s
		ORDER BY r.display_order, r.key
		%s`, ruleColumns, where, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list calculation rules: %w", err)
	}
	items, err := collect(rows, scanRule, "calculation rules")
	return items, total, err
}

func (r *Repo) ActiveRules(ctx context.Context) ([]CalculationRule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ruleColumns+` FROM calculation_rules r WHERE r.is_active ORDER BY r.display_order, r.key`)
	if err != nil {
		return nil, fmt.Errorf("active calculation rules: %w", err)
	}
	return collect(rows, scanRule, "active calculation rules")
}

func (r *Repo) GetRule(ctx context.Context, id uuid.UUID) (CalculationRule, error) {
	c, err := scanRule(r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM calculation_rules r WHERE r.id = $1`, id))
	if err != nil {
		return CalculationRule{}, readError("get calculation rule", ruleNotFoundMessage, err)
	}
	return c, nil
}

func (r *Repo) CreateRule(ctx context.Context, rule CalculationRule) (CalculationRule, error) {
	c, err := scanRule(r.pool.QueryRow(ctx, `
		INSERT INTO calculation_rules AS r (key, value, value_type, description, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ruleColumns,
		rule.Key, rule.Value, rule.ValueType, rule.Description, rule.DisplayOrder, rule.IsActive))
	if err != nil {
		return CalculationRule{}, writeError("create calculation rule", ruleNotFoundMessage, "rule key already exists", err)
	}
	return c, nil
}

func (r *Repo) UpdateRule(ctx context.Context, rule CalculationRule) (CalculationRule, error) {
	c, err := scanRule(r.pool.QueryRow(ctx, `
		UPDATE calculation_rules AS r
		SET key = $2, value = $3, value_type = $4, description = $5, display_order = $6, is_active = $7, updated_at = now()
		WHERE r.id = $1
		RETURNING `+ruleColumns,
		rule.ID, rule.Key, rule.Value, rule.ValueType, rule.Description, rule.DisplayOrder, rule.IsActive))
	if err != nil {
		return CalculationRule{}, writeError("update calculation rule", ruleNotFoundMessage, "rule key already exists", err)
	}
	return c, nil
}

func (r *Repo) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, "calculation_rules", id, ruleNotFoundMessage)
}
