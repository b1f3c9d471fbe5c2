package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// City is a served city.
type City struct {
	ID           uuid.UUID
	Name         string
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NeighborhoodLevel groups neighborhoods under a default multiplier.
type NeighborhoodLevel struct {
	ID           uuid.UUID
	Code         string
	Name         string
	Multiplier   decimal.Decimal
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Neighborhood belongs to one city and one level. Multiplier overrides the
// level multiplier when valid.
type Neighborhood struct {
	ID              uuid.UUID
	CityID          uuid.UUID
	CityName        string
	LevelID         uuid.UUID
	LevelCode       string
	LevelMultiplier decimal.Decimal
	Name            string
	Multiplier      decimal.NullDecimal
	ApplyAboveArea  decimal.Decimal
	DisplayOrder    int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Tier is one area range of a package, ordered by Position.
type Tier struct {
	Position    int
	MinArea     decimal.Decimal
	MaxArea     decimal.NullDecimal
	PricePerSqm decimal.Decimal
}

// Package is an inspection package with its area tiers.
type Package struct {
	ID           uuid.UUID
	Name         string
	DisplayName  string
	Description  string
	BasePrice    decimal.Decimal
	PricingMode  string
	AreaBasis    string
	DisplayOrder int
	IsActive     bool
	Tiers        []Tier
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MultiplierKind selects the property-age or inspection-purpose table.
type MultiplierKind string

const (
	PropertyAge       MultiplierKind = "property_age"
	InspectionPurpose MultiplierKind = "inspection_purpose"
)

// Table returns the backing table name.
func (k MultiplierKind) Table() string {
	if k == InspectionPurpose {
		return "inspection_purpose_multipliers"
	}
	return "property_age_multipliers"
}

// Multiplier is a property-age or inspection-purpose bucket.
type Multiplier struct {
	ID           uuid.UUID
	Key          string
	Label        string
	Multiplier   decimal.Decimal
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VatSetting is one entry of the VAT history. At most one is active.
type VatSetting struct {
	ID            uuid.UUID
	Percentage    decimal.Decimal
	IsActive      bool
	EffectiveFrom time.Time
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

// CalculationRule is a keyed setting read by the quote engine.
type CalculationRule struct {
	ID           uuid.UUID
	Key          string
	Value        string
	ValueType    string
	Description  string
	DisplayOrder int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListParams filters admin list endpoints.
type ListParams struct {
	Search          string
	IncludeInactive bool
	CityID          *uuid.UUID
	Offset          int
	Limit           int
}

// Repository defines the catalog data access contract.
type Repository interface {
	ListCities(ctx context.Context, params ListParams) ([]City, int, error)
	GetCity(ctx context.Context, id uuid.UUID) (City, error)
	CreateCity(ctx context.Context, city City) (City, error)
	UpdateCity(ctx context.Context, city City) (City, error)
	DeactivateCity(ctx context.Context, id uuid.UUID) error

	ListLevels(ctx context.Context, params ListParams) ([]NeighborhoodLevel, int, error)
	GetLevel(ctx context.Context, id uuid.UUID) (NeighborhoodLevel, error)
	CreateLevel(ctx context.Context, level NeighborhoodLevel) (NeighborhoodLevel, error)
	UpdateLevel(ctx context.Context, level NeighborhoodLevel) (NeighborhoodLevel, error)
	DeactivateLevel(ctx context.Context, id uuid.UUID) error

	ListNeighborhoods(ctx context.Context, params ListParams) ([]Neighborhood, int, error)
	GetNeighborhood(ctx context.Context, id uuid.UUID) (Neighborhood, error)
	CreateNeighborhood(ctx context.Context, n Neighborhood) (Neighborhood, error)
	UpdateNeighborhood(ctx context.Context, n Neighborhood) (Neighborhood, error)
	DeactivateNeighborhood(ctx context.Context, id uuid.UUID) error

	ListPackages(ctx context.Context, params ListParams) ([]Package, int, error)
	GetPackage(ctx context.Context, id uuid.UUID) (Package, error)
	CreatePackage(ctx context.Context, pkg Package) (Package, error)
	UpdatePackage(ctx context.Context, pkg Package, replaceTiers bool) (Package, error)
	DeactivatePackage(ctx context.Context, id uuid.UUID) error

	ListMultipliers(ctx context.Context, kind MultiplierKind, params ListParams) ([]Multiplier, int, error)
	GetMultiplier(ctx context.Context, kind MultiplierKind, id uuid.UUID) (Multiplier, error)
	CreateMultiplier(ctx context.Context, kind MultiplierKind, m Multiplier) (Multiplier, error)
	UpdateMultiplier(ctx context.Context, kind MultiplierKind, m Multiplier) (Multiplier, error)
	DeactivateMultiplier(ctx context.Context, kind MultiplierKind, id uuid.UUID) error

	ListRules(ctx context.Context, params ListParams) ([]CalculationRule, int, error)
	GetRule(ctx context.Context, id uuid.UUID) (CalculationRule, error)
	CreateRule(ctx context.Context, rule CalculationRule) (CalculationRule, error)
	UpdateRule(ctx context.Context, rule CalculationRule) (CalculationRule, error)
	DeactivateRule(ctx context.Context, id uuid.UUID) error

	GetActiveVat(ctx context.Context) (VatSetting, error)
	ListVatHistory(ctx context.Context, offset, limit int) ([]VatSetting, int, error)
	// SupersedeVat deactivates the active setting and inserts a new active
	// one in a single transaction. previous is nil when none was active.
	SupersedeVat(ctx context.Context, percentage decimal.Decimal, createdBy *uuid.UUID) (current VatSetting, previous *VatSetting, err error)

	SnapshotReader
}

// SnapshotReader loads the active rows that make up the public config.
type SnapshotReader interface {
	ActiveCities(ctx context.Context) ([]City, error)
	ActiveLevels(ctx context.Context) ([]NeighborhoodLevel, error)
	ActiveNeighborhoods(ctx context.Context) ([]Neighborhood, error)
	ActivePackages(ctx context.Context) ([]Package, error)
	ActiveMultipliers(ctx context.Context, kind MultiplierKind) ([]Multiplier, error)
	ActiveRules(ctx context.Context) ([]CalculationRule, error)
	// GetActiveVat returns apperr NotFound when no VAT setting is active.
	GetActiveVat(ctx context.Context) (VatSetting, error)
}
