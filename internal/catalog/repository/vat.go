package repository

import (
	"context"
	"errors"
	"fmt"

	"inspection_portal/platform/apperr"
	"inspection_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const vatNotConfiguredMessage = "no active vat setting"

const vatColumns = `id, percentage, is_active, effective_from, created_by, created_at`

func scanVat(row pgx.Row) (VatSetting, error) {
	var v VatSetting
	err := row.Scan(&v.ID, &v.Percentage, &v.IsActive, &v.EffectiveFrom, &v.CreatedBy, &v.CreatedAt)
	return v, err
}

func (r *Repo) GetActiveVat(ctx context.Context) (VatSetting, error) {
	v, err := scanVat(r.pool.QueryRow(ctx, `SELECT `+vatColumns+` FROM vat_settings WHERE is_active`))
	if err != nil {
		return VatSetting{}, readError("get active vat", vatNotConfiguredMessage, err)
	}
	return v, nil
}

func (r *Repo) ListVatHistory(ctx context.Context, offset, limit int) ([]VatSetting, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vat_settings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vat settings: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+vatColumns+` FROM vat_settings
		ORDER BY effective_from DESC, created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list vat settings: %w", err)
	}
	items, err := collect(rows, scanVat, "vat settings")
	return items, total, err
}

func (r *Repo) SupersedeVat(ctx context.Context, percentage decimal.Decimal, createdBy *uuid.UUID) (VatSetting, *VatSetting, error) {
	var current VatSetting
	var previous *VatSetting

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		prev, err := scanVat(tx.QueryRow(ctx, `
			UPDATE vat_settings SET is_active = false
			WHERE is_active
			RETURNING `+vatColumns))
		switch {
		case err == nil:
			previous = &prev
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("deactivate vat setting: %w", err)
		}

		current, err = scanVat(tx.QueryRow(ctx, `
			INSERT INTO vat_settings (percentage, is_active, effective_from, created_by)
			VALUES ($1, true, now(), $2)
			RETURNING `+vatColumns, percentage, createdBy))
		if err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("vat setting changed concurrently")
			}
			return fmt.Errorf("insert vat setting: %w", err)
		}
		return nil
	})
	if err != nil {
		return VatSetting{}, nil, err
	}
	return current, previous, nil
}
