package repository

import (
	"context"
	"fmt"

	"inspection_portal/platform/apperr"
	"inspection_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	packageNotFoundMessage = "package not found"
	packageConflictMessage = "package name already exists"
)

const packageColumns = `p.id, p.name, p.display_name, p.description, p.base_price, p.pricing_mode, p.area_basis,
	p.display_order, p.is_active, p.created_at, p.updated_at`

func scanPackage(row pgx.Row) (Package, error) {
	var p Package
	err := row.Scan(
		&p.ID, &p.Name, &p.DisplayName, &p.Description, &p.BasePrice, &p.PricingMode, &p.AreaBasis,
		&p.DisplayOrder, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *Repo) ListPackages(ctx context.Context, params ListParams) ([]Package, int, error) {
	where, args := filter("p", params, "name", "display_name")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM packages p WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count packages: %w", err)
	}

	args, page := pageArgs(args, params)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM packages p
		WHERE %s
		ORDER BY p.display_order, p.name
		%s`, packageColumns, where, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list packages: %w", err)
	}
	items, err := collect(rows, scanPackage, "packages")
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachTiers(ctx, r.pool, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repo) ActivePackages(ctx context.Context) ([]Package, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+packageColumns+` FROM packages p WHERE p.is_active ORDER BY p.display_order, p.name`)
	if err != nil {
		return nil, fmt.Errorf("active packages: %w", err)
	}
	items, err := collect(rows, scanPackage, "active packages")
	if err != nil {
		return nil, err
	}
	if err := r.attachTiers(ctx, r.pool, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) GetPackage(ctx context.Context, id uuid.UUID) (Package, error) {
	return r.getPackage(ctx, r.pool, id)
}

func (r *Repo) getPackage(ctx context.Context, q querier, id uuid.UUID) (Package, error) {
	p, err := scanPackage(q.QueryRow(ctx, `SELECT `+packageColumns+` FROM packages p WHERE p.id = $1`, id))
	if err != nil {
		return Package{}, readError("get package", packageNotFoundMessage, err)
	}
	items := []Package{p}
	if err := r.attachTiers(ctx, q, items); err != nil {
		return Package{}, err
	}
	return items[0], nil
}

// CreatePackage inserts the package and its tiers atomically.
func (r *Repo) CreatePackage(ctx context.Context, pkg Package) (Package, error) {
	var created Package
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx, `
			INSERT INTO packages (name, display_name, description, base_price, pricing_mode, area_basis, display_order, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			pkg.Name, pkg.DisplayName, pkg.Description, pkg.BasePrice, pkg.PricingMode, pkg.AreaBasis, pkg.DisplayOrder, pkg.IsActive,
		).Scan(&id); err != nil {
			return writeError("create package", packageNotFoundMessage, packageConflictMessage, err)
		}
		if err := insertTiers(ctx, tx, id, pkg.Tiers); err != nil {
			return err
		}

		var err error
		created, err = r.getPackage(ctx, tx, id)
		return err
	})
	return created, err
}

// UpdatePackage rewrites the package row and, when replaceTiers is set,
// replaces its tiers in the same transaction.
func (r *Repo) UpdatePackage(ctx context.Context, pkg Package, replaceTiers bool) (Package, error) {
	var updated Package
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE packages
			SET name = $2, display_name = $3, description = $4, base_price = $5, pricing_mode = $6,
				area_basis = $7, display_order = $8, is_active = $9, updated_at = now()
			WHERE id = $1`,
			pkg.ID, pkg.Name, pkg.DisplayName, pkg.Description, pkg.BasePrice, pkg.PricingMode,
			pkg.AreaBasis, pkg.DisplayOrder, pkg.IsActive,
		)
		if err != nil {
			return writeError("update package", packageNotFoundMessage, packageConflictMessage, err)
		}
		if result.RowsAffected() == 0 {
			return apperr.NotFound(packageNotFoundMessage)
		}

		if replaceTiers {
			if _, err := tx.Exec(ctx, `DELETE FROM package_tiers WHERE package_id = $1`, pkg.ID); err != nil {
				return fmt.Errorf("delete package tiers: %w", err)
			}
			if err := insertTiers(ctx, tx, pkg.ID, pkg.Tiers); err != nil {
				return err
			}
		}

		updated, err = r.getPackage(ctx, tx, pkg.ID)
		return err
	})
	return updated, err
}

func (r *Repo) DeactivatePackage(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, "packages", id, packageNotFoundMessage)
}

func insertTiers(ctx context.Context, tx pgx.Tx, packageID uuid.UUID, tiers []Tier) error {
	batch := &pgx.Batch{}
	for i, t := range tiers {
		batch.Queue(`
			INSERT INTO package_tiers (package_id, position, min_area, max_area, price_per_sqm)
			VALUES ($1, $2, $3, $4, $5)`,
			packageID, i, t.MinArea, t.MaxArea, t.PricePerSqm,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert package tiers: %w", err)
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// attachTiers loads the tiers of every package in one query.
func (r *Repo) attachTiers(ctx context.Context, q querier, pkgs []Package) error {
	if len(pkgs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(pkgs))
	index := make(map[uuid.UUID]int, len(pkgs))
	for i, p := range pkgs {
		ids[i] = p.ID
		index[p.ID] = i
		pkgs[i].Tiers = []Tier{}
	}

	rows, err := q.Query(ctx, `
		SELECT package_id, position, min_area, max_area, price_per_sqm
		FROM package_tiers
		WHERE package_id = ANY($1)
		ORDER BY package_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list package tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var packageID uuid.UUID
		var t Tier
		if err := rows.Scan(&packageID, &t.Position, &t.MinArea, &t.MaxArea, &t.PricePerSqm); err != nil {
			return fmt.Errorf("scan package tier: %w", err)
		}
		i := index[packageID]
		pkgs[i].Tiers = append(pkgs[i].Tiers, t)
	}
	if rows.Err() != nil {
		return fmt.Errorf("iterate package tiers: %w", rows.Err())
	}
	return nil
}
