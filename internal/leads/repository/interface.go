package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lead is a persisted calculator submission. Pricing inputs and the stored
// breakdown never change after insert; only the workflow fields do.
type Lead struct {
	ID                     uuid.UUID
	FullName               string
	Email                  string
	Phone                  string
	CityID                 uuid.UUID
	CityName               string
	NeighborhoodID         uuid.UUID
	NeighborhoodName       string
	PackageID              uuid.UUID
	PackageName            string
	PropertyAgeKey         string
	PurposeKey             string
	LandArea               decimal.Decimal
	CoveredArea            decimal.Decimal
	TotalArea              decimal.Decimal
	BasePrice              decimal.Decimal
	AgeMultiplier          decimal.Decimal
	PurposeMultiplier      decimal.Decimal
	NeighborhoodMultiplier decimal.Decimal
	PriceBeforeVAT         decimal.Decimal
	VATPercentage          decimal.Decimal
	VATAmount              decimal.Decimal
	FinalPrice             decimal.Decimal
	Breakdown              json.RawMessage
	Status                 string
	Notes                  string
	AssignedTo             *uuid.UUID
	AssignedToName         *string
	FollowUpDate           *time.Time
	Source                 string
	IPAddress              string
	UserAgent              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// ListParams filters the staff lead list. Every set filter combines with AND.
type ListParams struct {
	Status      *string
	Search      string
	PackageID   *uuid.UUID
	CityID      *uuid.UUID
	AssignedTo  *uuid.UUID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	SortOrder   string
	Offset      int
	Limit       int
}

// WorkflowUpdate carries the mutable fields. The *Set flags distinguish an
// explicit null (clear) from an absent field.
type WorkflowUpdate struct {
	Status        *string
	Notes         *string
	AssignedToSet bool
	AssignedTo    *uuid.UUID
	FollowUpSet   bool
	FollowUpDate  *time.Time
}

// Empty reports whether the update touches no column.
func (u WorkflowUpdate) Empty() bool {
	return u.Status == nil && u.Notes == nil && !u.AssignedToSet && !u.FollowUpSet
}

// Repository defines the lead data access contract.
type Repository interface {
	Create(ctx context.Context, lead Lead) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
	UpdateWorkflow(ctx context.Context, id uuid.UUID, update WorkflowUpdate) (Lead, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
