package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inspection_portal/platform/apperr"
	"inspection_portal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const msgLeadNotFound = "lead not found"

// Repo implements the lead repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new lead repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const leadColumns = `
	l.id, l.full_name, l.email, l.phone,
	l.city_id, l.city_name, l.neighborhood_id, l.neighborhood_name,
	l.package_id, l.package_name, l.property_age_key, l.purpose_key,
	l.land_area, l.covered_area, l.total_area, l.base_price,
	l.age_multiplier, l.purpose_multiplier, l.neighborhood_multiplier,
	l.price_before_vat, l.vat_percentage, l.vat_amount, l.final_price, l.breakdown,
	l.status, l.notes, l.assigned_to, u.full_name, l.follow_up_date,
	l.source, l.ip_address, l.user_agent, l.created_at, l.updated_at`

const leadFrom = `FROM leads l LEFT JOIN users u ON u.id = l.assigned_to`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FullName, &l.Email, &l.Phone,
		&l.CityID, &l.CityName, &l.NeighborhoodID, &l.NeighborhoodName,
		&l.PackageID, &l.PackageName, &l.PropertyAgeKey, &l.PurposeKey,
		&l.LandArea, &l.CoveredArea, &l.TotalArea, &l.BasePrice,
		&l.AgeMultiplier, &l.PurposeMultiplier, &l.NeighborhoodMultiplier,
		&l.PriceBeforeVAT, &l.VATPercentage, &l.VATAmount, &l.FinalPrice, &l.Breakdown,
		&l.Status, &l.Notes, &l.AssignedTo, &l.AssignedToName, &l.FollowUpDate,
		&l.Source, &l.IPAddress, &l.UserAgent, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *Repo) Create(ctx context.Context, lead Lead) (Lead, error) {
	query := `
		INSERT INTO leads (
			full_name, email, phone, city_id, city_name, neighborhood_id, neighborhood_name,
			package_id, package_name, property_age_key, purpose_key,
			land_area, covered_area, total_area, base_price,
			age_multiplier, purpose_multiplier, neighborhood_multiplier,
			price_before_vat, vat_percentage, vat_amount, final_price, breakdown,
			source, ip_address, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
		RETURNING id, status, notes, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		lead.FullName, lead.Email, lead.Phone, lead.CityID, lead.CityName, lead.NeighborhoodID, lead.NeighborhoodName,
		lead.PackageID, lead.PackageName, lead.PropertyAgeKey, lead.PurposeKey,
		lead.LandArea, lead.CoveredArea, lead.TotalArea, lead.BasePrice,
		lead.AgeMultiplier, lead.PurposeMultiplier, lead.NeighborhoodMultiplier,
		lead.PriceBeforeVAT, lead.VATPercentage, lead.VATAmount, lead.FinalPrice, lead.Breakdown,
		lead.Source, lead.IPAddress, lead.UserAgent,
	).Scan(&lead.ID, &lead.Status, &lead.Notes, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Lead{}, apperr.Validation("referenced configuration no longer exists")
		}
		return Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE l.id = $1", leadColumns, leadFrom)
	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args := buildLeadListWhere(params)
	argIdx := len(args) + 1

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	sortOrder := "DESC"
	if params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		%s
		WHERE %s
		ORDER BY %s %s, l.id
		LIMIT $%d OFFSET $%d
	`, leadColumns, leadFrom, whereClause, mapLeadSortColumn(params.SortBy), sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", rows.Err())
	}

	return leads, total, nil
}

func (r *Repo) UpdateWorkflow(ctx context.Context, id uuid.UUID, update WorkflowUpdate) (Lead, error) {
	setClauses := []string{"updated_at = now()"}
	args := []interface{}{}
	argIdx := 1

	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	if update.Status != nil {
		set("status", *update.Status)
	}
	if update.Notes != nil {
		set("notes", *update.Notes)
	}
	if update.AssignedToSet {
		set("assigned_to", update.AssignedTo)
	}
	if update.FollowUpSet {
		set("follow_up_date", update.FollowUpDate)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argIdx)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Lead{}, apperr.InvalidField("assignedTo", "unknown user")
		}
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan lead count: %w", err)
		}
		counts[status] = n
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate lead counts: %w", rows.Err())
	}
	return counts, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEquals("l.status", *params.Status)
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.full_name ILIKE $%[1]d %[2]s OR l.email ILIKE $%[1]d %[2]s OR l.phone ILIKE $%[1]d %[2]s)",
			argIdx, db.LikeEscape,
		))
		args = append(args, db.ContainsPattern(search))
		argIdx++
	}
	if params.PackageID != nil {
		addEquals("l.package_id", *params.PackageID)
	}
	if params.CityID != nil {
		addEquals("l.city_id", *params.CityID)
	}
	if params.AssignedTo != nil {
		addEquals("l.assigned_to", *params.AssignedTo)
	}
	if params.CreatedFrom != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at >= $%d", argIdx))
		args = append(args, *params.CreatedFrom)
		argIdx++
	}
	if params.CreatedTo != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("l.created_at < $%d", argIdx))
		args = append(args, *params.CreatedTo)
	}

	return strings.Join(whereClauses, " AND "), args
}

func mapLeadSortColumn(sortBy string) string {
	switch sortBy {
	case "finalPrice":
		return "l.final_price"
	case "status":
		return "l.status"
	default:
		return "l.created_at"
	}
}
