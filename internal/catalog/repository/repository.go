package repository

import (
	"errors"
	"fmt"
	"strings"

	"inspection_portal/platform/apperr"
	"inspection_portal/platform/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// filter builds a WHERE clause for admin list queries. Search is matched
// case-insensitively against every column in searchCols.
func filter(alias string, params ListParams, searchCols ...string) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if !params.IncludeInactive {
		whereClauses = append(whereClauses, alias+".is_active = true")
	}
	if params.CityID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("%s.city_id = $%d", alias, argIdx))
		args = append(args, *params.CityID)
		argIdx++
	}
	if search := strings.TrimSpace(params.Search); search != "" && len(searchCols) > 0 {
		ors := make([]string, 0, len(searchCols))
		for _, col := range searchCols {
			ors = append(ors, fmt.Sprintf("%s.%s ILIKE $%d %s", alias, col, argIdx, db.LikeEscape))
		}
		whereClauses = append(whereClauses, "("+strings.Join(ors, " OR ")+")")
		args = append(args, db.ContainsPattern(search))
	}

	return strings.Join(whereClauses, " AND "), args
}

// pageArgs appends LIMIT/OFFSET args and returns their placeholders.
func pageArgs(args []interface{}, params ListParams) ([]interface{}, string) {
	n := len(args)
	args = append(args, params.Limit, params.Offset)
	return args, fmt.Sprintf("LIMIT $%d OFFSET $%d", n+1, n+2)
}

// writeError maps constraint violations on insert/update to domain errors.
func writeError(op, notFound, conflict string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperr.NotFound(notFound)
	case db.IsUniqueViolation(err):
		return apperr.Conflict(conflict)
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("referenced record does not exist")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func readError(op, notFound string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
