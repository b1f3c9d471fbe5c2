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

const msgDownloadNotFound = "report download not found"

// Repo implements the report download repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new report download repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

const downloadColumns = `id, phone, full_name, email, source, referrer, utm_source, utm_medium, utm_campaign,
	ip_address, user_agent, status, notes, created_at, updated_at`

func scanDownload(row pgx.Row) (Download, error) {
	var d Download
	err := row.Scan(
		&d.ID, &d.Phone, &d.FullName, &d.Email, &d.Source, &d.Referrer,
		&d.UTMSource, &d.UTMMedium, &d.UTMCampaign,
		&d.IPAddress, &d.UserAgent, &d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *Repo) Create(ctx context.Context, d Download) (Download, error) {
	query := `
		INSERT INTO report_downloads (phone, full_name, email, source, referrer, utm_source, utm_medium, utm_campaign, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + downloadColumns

	created, err := scanDownload(r.pool.QueryRow(ctx, query,
		d.Phone, d.FullName, d.Email, d.Source, d.Referrer,
		d.UTMSource, d.UTMMedium, d.UTMCampaign, d.IPAddress, d.UserAgent,
	))
	if err != nil {
		return Download{}, fmt.Errorf("insert report download: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Download, error) {
	d, err := scanDownload(r.pool.QueryRow(ctx, "SELECT "+downloadColumns+" FROM report_downloads WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Download{}, apperr.NotFound(msgDownloadNotFound)
	}
	if err != nil {
		return Download{}, fmt.Errorf("get report download: %w", err)
	}
	return d, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]Download, int, error) {
	whereClause, args := buildListWhere(params)
	argIdx := len(args) + 1

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM report_downloads WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count report downloads: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM report_downloads
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, downloadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list report downloads: %w", err)
	}
	defer rows.Close()

	items := make([]Download, 0)
	for rows.Next() {
		d, err := scanDownload(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report download: %w", err)
		}
		items = append(items, d)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate report downloads: %w", rows.Err())
	}
	return items, total, nil
}

func (r *Repo) UpdateWorkflow(ctx context.Context, id uuid.UUID, status, notes *string) (Download, error) {
	query := `
		UPDATE report_downloads
		SET status = COALESCE($2, status),
			notes = COALESCE($3, notes),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + downloadColumns

	d, err := scanDownload(r.pool.QueryRow(ctx, query, id, status, notes))
	if errors.Is(err, pgx.ErrNoRows) {
		return Download{}, apperr.NotFound(msgDownloadNotFound)
	}
	if err != nil {
		return Download{}, fmt.Errorf("update report download: %w", err)
	}
	return d, nil
}

func buildListWhere(params ListParams) (string, []interface{}) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(phone ILIKE $%[1]d %[2]s OR full_name ILIKE $%[1]d %[2]s OR email ILIKE $%[1]d %[2]s)",
			argIdx, db.LikeEscape,
		))
		args = append(args, db.ContainsPattern(search))
	}

	return strings.Join(whereClauses, " AND "), args
}
