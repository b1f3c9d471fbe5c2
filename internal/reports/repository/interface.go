package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Download is one sample-report request captured from the marketing site.
type Download struct {
	ID          uuid.UUID
	Phone       string
	FullName    string
	Email       string
	Source      string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	IPAddress   string
	UserAgent   string
	Status      string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListParams filters the staff list.
type ListParams struct {
	Status *string
	Search string
	Offset int
	Limit  int
}

// Repository defines the report download data access contract.
type Repository interface {
	Create(ctx context.Context, d Download) (Download, error)
	GetByID(ctx context.Context, id uuid.UUID) (Download, error)
	List(ctx context.Context, params ListParams) ([]Download, int, error)
	UpdateWorkflow(ctx context.Context, id uuid.UUID, status, notes *string) (Download, error)
}
