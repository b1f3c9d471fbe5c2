package repository

import (
	"context"
	"fmt"

	"inspection_portal/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	cityNotFoundMessage         = "city not found"
	levelNotFoundMessage        = "neighborhood level not found"
	neighborhoodNotFoundMessage = "neighborhood not found"
)

const cityColumns = `c.id, c.name, c.display_order, c.is_active, c.created_at, c.updated_at`

func scanCity(row pgx.Row) (City, error) {
	var c City
	err := row.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repo) ListCities(ctx context.Context, params ListParams) ([]City, int, error) {
	where, args := filter("c", params, "name")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM cities c WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cities: %w", err)
	}

	args, page := pageArgs(args, params)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM cities c
		WHERE %s
		ORDER BY c.display_order, c.name
		%s`, cityColumns, where, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cities: %w", err)
	}
	items, err := collect(rows, scanCity, "cities")
	return items, total, err
}

func (r *Repo) ActiveCities(ctx context.Context) ([]City, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cityColumns+` FROM cities c WHERE c.is_active ORDER BY c.display_order, c.name`)
	if err != nil {
		return nil, fmt.Errorf("active cities: %w", err)
	}
	return collect(rows, scanCity, "active cities")
}

func (r *Repo) GetCity(ctx context.Context, id uuid.UUID) (City, error) {
	c, err := scanCity(r.pool.QueryRow(ctx, `SELECT `+cityColumns+` FROM cities c WHERE c.id = $1`, id))
	if err != nil {
		return City{}, readError("get city", cityNotFoundMessage, err)
	}
	return c, nil
}

func (r *Repo) CreateCity(ctx context.Context, city City) (City, error) {
	c, err := scanCity(r.pool.QueryRow(ctx, `
		INSERT INTO cities AS c (name, display_order, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+cityColumns, city.Name, city.DisplayOrder, city.IsActive))
	if err != nil {
		return City{}, writeError("create city", cityNotFoundMessage, "city already exists", err)
	}
	return c, nil
}

func (r *Repo) UpdateCity(ctx context.Context, city City) (City, error) {
	c, err := scanCity(r.pool.QueryRow(ctx, `
		UPDATE cities AS c
		SET name = $2, display_order = $3, is_active = $4, updated_at = now()
		WHERE c.id = $1
		RETURNING `+cityColumns, city.ID, city.Name, city.DisplayOrder, city.IsActive))
	if err != nil {
		return City{}, writeError("update city", cityNotFoundMessage, "city already exists", err)
	}
	return c, nil
}

func (r *Repo) DeactivateCity(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, "cities", id, cityNotFoundMessage)
}

const levelColumns = `l.id, l.code, l.name, l.multiplier, l.display_order, l.is_active, l.created_at, l.updated_at`

func scanLevel(row pgx.Row) (NeighborhoodLevel, error) {
	var l NeighborhoodLevel
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.Multiplier, &l.DisplayOrder, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repo) ListLevels(ctx context.Context, params ListParams) ([]NeighborhoodLevel, int, error) {
	where, args := filter("l", params, "code", "name")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM neighborhood_levels l WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count neighborhood levels: %w", err)
	}

	args, page := pageArgs(args, params)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM neighborhood_levels l
		WHERE %s
		ORDER BY l.display_order, l.name
		%s`, levelColumns, where, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list neighborhood levels: %w", err)
	}
	items, err := collect(rows, scanLevel, "neighborhood levels")
	return items, total, err
}

func (r *Repo) ActiveLevels(ctx context.Context) ([]NeighborhoodLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+levelColumns+` FROM neighborhood_levels l WHERE l.is_active ORDER BY l.display_order, l.name`)
	if err != nil {
		return nil, fmt.Errorf("active neighborhood levels: %w", err)
	}
	return collect(rows, scanLevel, "active neighborhood levels")
}

func (r *Repo) GetLevel(ctx context.Context, id uuid.UUID) (NeighborhoodLevel, error) {
	l, err := scanLevel(r.pool.QueryRow(ctx, `SELECT `+levelColumns+` FROM neighborhood_levels l WHERE l.id = $1`, id))
	if err != nil {
		return NeighborhoodLevel{}, readError("get neighborhood level", levelNotFoundMessage, err)
	}
	return l, nil
}

func (r *Repo) CreateLevel(ctx context.Context, level NeighborhoodLevel) (NeighborhoodLevel, error) {
	l, err := scanLevel(r.pool.QueryRow(ctx, `
		INSERT INTO neighborhood_levels AS l (code, name, multiplier, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+levelColumns,
		level.Code, level.Name, level.Multiplier, level.DisplayOrder, level.IsActive))
	if err != nil {
		return NeighborhoodLevel{}, writeError("create neighborhood level", levelNotFoundMessage, "level code already exists", err)
	}
	return l, nil
}

func (r *Repo) UpdateLevel(ctx context.Context, level NeighborhoodLevel) (NeighborhoodLevel, error) {
	l, err := scanLevel(r.pool.QueryRow(ctx, `
		UPDATE neighborhood_levels AS l
		SET code = $2, name = $3, multiplier = $4, display_order = $5, is_active = $6, updated_at = now()
		WHERE l.id = $1
		RETURNING `+levelColumns,
		level.ID, level.Code, level.Name, level.Multiplier, level.DisplayOrder, level.IsActive))
	if err != nil {
		return NeighborhoodLevel{}, writeError("update neighborhood level", levelNotFoundMessage, "level code already exists", err)
	}
	return l, nil
}

func (r *Repo) DeactivateLevel(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, "neighborhood_levels", id, levelNotFoundMessage)
}

const neighborhoodSelect = `
	SELECT n.id, n.city_id, c.name, n.level_id, l.code, l.multiplier, n.name, n.multiplier,
		n.apply_above_area, n.display_order, n.is_active, n.created_at, n.updated_at
	FROM neighborhoods n
	JOIN cities c ON c.id = n.city_id
	JOIN neighborhood_levels l ON l.id = n.level_id`

func scanNeighborhood(row pgx.Row) (Neighborhood, error) {
	var n Neighborhood
	err := row.Scan(
		&n.ID, &n.CityID, &n.CityName, &n.LevelID, &n.LevelCode, &n.LevelMultiplier, &n.Name, &n.Multiplier,
		&n.ApplyAboveArea, &n.DisplayOrder, &n.IsActive, &n.CreatedAt, &n.UpdatedAt,
	)
	return n, err
}

func (r *Repo) ListNeighborhoods(ctx context.Context, params ListParams) ([]Neighborhood, int, error) {
	where, args := filter("n", params, "name")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM neighborhoods n WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count neighborhoods: %w", err)
	}

	args, page := pageArgs(args, params)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`%s
		WHERE %s
		ORDER BY c.display_order, c.name, n.display_order, n.name
		%s`, neighborhoodSelect, where, page), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list neighborhoods: %w", err)
	}
	items, err := collect(rows, scanNeighborhood, "neighborhoods")
	return items, total, err
}

// ActiveNeighborhoods excludes neighborhoods whose city or level is inactive.
func (r *Repo) ActiveNeighborhoods(ctx context.Context) ([]Neighborhood, error) {
	rows, err := r.pool.Query(ctx, neighborhoodSelect+`
		WHERE n.is_active AND c.is_active AND l.is_active
		ORDER BY n.display_order, n.name`)
	if err != nil {
		return nil, fmt.Errorf("active neighborhoods: %w", err)
	}
	return collect(rows, scanNeighborhood, "active neighborhoods")
}

func (r *Repo) GetNeighborhood(ctx context.Context, id uuid.UUID) (Neighborhood, error) {
	n, err := scanNeighborhood(r.pool.QueryRow(ctx, neighborhoodSelect+` WHERE n.id = $1`, id))
	if err != nil {
		return Neighborhood{}, readError("get neighborhood", neighborhoodNotFoundMessage, err)
	}
	return n, nil
}

func (r *Repo) CreateNeighborhood(ctx context.Context, n Neighborhood) (Neighborhood, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO neighborhoods (city_id, level_id, name, multiplier, apply_above_area, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		n.CityID, n.LevelID, n.Name, n.Multiplier, n.ApplyAboveArea, n.DisplayOrder, n.IsActive,
	).Scan(&id)
	if err != nil {
		return Neighborhood{}, writeError("create neighborhood", neighborhoodNotFoundMessage, "neighborhood already exists in this city", err)
	}
	return r.GetNeighborhood(ctx, id)
}

func (r *Repo) UpdateNeighborhood(ctx context.Context, n Neighborhood) (Neighborhood, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE neighborhoods
		SET city_id = $2, level_id = $3, name = $4, multiplier = $5, apply_above_area = $6,
			display_order = $7, is_active = $8, updated_at = now()
		WHERE id = $1`,
		n.ID, n.CityID, n.LevelID, n.Name, n.Multiplier, n.ApplyAboveArea, n.DisplayOrder, n.IsActive,
	)
	if err != nil {
		return Neighborhood{}, writeError("update neighborhood", neighborhoodNotFoundMessage, "neighborhood already exists in this city", err)
	}
	if result.RowsAffected() == 0 {
		return Neighborhood{}, apperr.NotFound(neighborhoodNotFoundMessage)
	}
	return r.GetNeighborhood(ctx, n.ID)
}

func (r *Repo) DeactivateNeighborhood(ctx context.Context, id uuid.UUID) error {
	return r.deactivate(ctx, "neighborhoods", id, neighborhoodNotFoundMessage)
}

// deactivate soft-deletes a row of table. table is never user input.
func (r *Repo) deactivate(ctx context.Context, table string, id uuid.UUID, notFound string) error {
	result, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE %s SET is_active = false, updated_at = now() WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("deactivate %s: %w", table, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error), what string) ([]T, error) {
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, rows.Err())
	}
	return items, nil
}
