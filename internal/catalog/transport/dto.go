// Package transport defines the catalog API request and response shapes.
package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListRequest is shared by every admin list endpoint.
type ListRequest struct {
	Search          string `form:"search" validate:"omitempty,max=100"`
	IncludeInactive bool   `form:"includeInactive"`
	CityID          string `form:"cityId" validate:"omitempty,uuid"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ListResponse is a page of catalog items.
type ListResponse[T any] struct {
	Items    []T
	Total    int
	Page     int
	PageSize int
}

// =============================================================================
// Cities
// =============================================================================

type CreateCityRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
	IsActive     *bool  `json:"isActive"`
}

type UpdateCityRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"isActive"`
}

type CityResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    string    `json:"createdAt,omitempty"`
	UpdatedAt    string    `json:"updatedAt,omitempty"`
}

// =============================================================================
// Neighborhood levels
// =============================================================================

type CreateLevelRequest struct {
	Code         string          `json:"code" validate:"required,min=1,max=20"`
	Name         string          `json:"name" validate:"required,min=1,max=100"`
	Multiplier   decimal.Decimal `json:"multiplier" validate:"gt=0"`
	DisplayOrder int             `json:"displayOrder" validate:"gte=0"`
	IsActive     *bool           `json:"isActive"`
}

type UpdateLevelRequest struct {
	Code         *string          `json:"code" validate:"omitempty,min=1,max=20"`
	Name         *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Multiplier   *decimal.Decimal `json:"multiplier" validate:"omitempty,gt=0"`
	DisplayOrder *int             `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive     *bool            `json:"isActive"`
}

type LevelResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	DisplayOrder int             `json:"displayOrder"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

// =============================================================================
// Neighborhoods
// =============================================================================

type CreateNeighborhoodRequest struct {
	CityID         uuid.UUID        `json:"cityId" validate:"required"`
	LevelID        uuid.UUID        `json:"levelId" validate:"required"`
	Name           string           `json:"name" validate:"required,min=1,max=100"`
	Multiplier     *decimal.Decimal `json:"multiplier" validate:"omitempty,gt=0"`
	ApplyAboveArea decimal.Decimal  `json:"applyAboveArea" validate:"gte=0"`
	DisplayOrder   int              `json:"displayOrder" validate:"gte=0"`
	IsActive       *bool            `json:"isActive"`
}

// UpdateNeighborhoodRequest clears the multiplier override on an explicit null.
type UpdateNeighborhoodRequest struct {
	CityID         *uuid.UUID       `json:"cityId"`
	LevelID        *uuid.UUID       `json:"levelId"`
	Name           *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Multiplier     OptionalDecimal  `json:"multiplier"`
	ApplyAboveArea *decimal.Decimal `json:"applyAboveArea" validate:"omitempty,gte=0"`
	DisplayOrder   *int             `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive       *bool            `json:"isActive"`
}

type NeighborhoodResponse struct {
	ID              uuid.UUID        `json:"id"`
	CityID          uuid.UUID        `json:"cityId"`
	CityName        string           `json:"cityName,omitempty"`
	LevelID         uuid.UUID        `json:"levelId"`
	LevelCode       string           `json:"levelCode"`
	LevelMultiplier decimal.Decimal  `json:"levelMultiplier"`
	Name            string           `json:"name"`
	Multiplier      *decimal.Decimal `json:"multiplier"`
	ApplyAboveArea  decimal.Decimal  `json:"applyAboveArea"`
	DisplayOrder    int              `json:"displayOrder"`
	IsActive        bool             `json:"isActive"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
}

// =============================================================================
// Packages
// =============================================================================

type TierRequest struct {
	MinArea     decimal.Decimal  `json:"minArea" validate:"gte=0"`
	MaxArea     *decimal.Decimal `json:"maxArea" validate:"omitempty,gt=0"`
	PricePerSqm decimal.Decimal  `json:"pricePerSqm" validate:"gte=0"`
}

type CreatePackageRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=50"`
	DisplayName  string          `json:"displayName" validate:"required,min=1,max=100"`
	Description  string          `json:"description" validate:"max=2000"`
	BasePrice    decimal.Decimal `json:"basePrice" validate:"gte=0"`
	PricingMode  string          `json:"pricingMode" validate:"omitempty,oneof=incremental flat"`
	AreaBasis    string          `json:"areaBasis" validate:"omitempty,oneof=combined covered land"`
	DisplayOrder int             `json:"displayOrder" validate:"gte=0"`
	IsActive     *bool           `json:"isActive"`
	Tiers        []TierRequest   `json:"tiers" validate:"required,min=1,max=50,dive"`
}

// UpdatePackageRequest replaces the tier list only when tiers is present.
type UpdatePackageRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=50"`
	DisplayName  *string          `json:"displayName" validate:"omitempty,min=1,max=100"`
	Description  *string          `json:"description" validate:"omitempty,max=2000"`
	BasePrice    *decimal.Decimal `json:"basePrice" validate:"omitempty,gte=0"`
	PricingMode  *string          `json:"pricingMode" validate:"omitempty,oneof=incremental flat"`
	AreaBasis    *string          `json:"areaBasis" validate:"omitempty,oneof=combined covered land"`
	DisplayOrder *int             `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive     *bool            `json:"isActive"`
	Tiers        []TierRequest    `json:"tiers" validate:"omitempty,min=1,max=50,dive"`
}

type TierResponse struct {
	MinArea     decimal.Decimal  `json:"minArea"`
	MaxArea     *decimal.Decimal `json:"maxArea"`
	PricePerSqm decimal.Decimal  `json:"pricePerSqm"`
}

type PackageResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	DisplayName  string          `json:"displayName"`
	Description  string          `json:"description"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	PricingMode  string          `json:"pricingMode"`
	AreaBasis    string          `json:"areaBasis"`
	DisplayOrder int             `json:"displayOrder"`
	IsActive     bool            `json:"isActive"`
	Tiers        []TierResponse  `json:"tiers"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

// =============================================================================
// Property age and inspection purpose multipliers
// =============================================================================

type CreateMultiplierRequest struct {
	Key          string          `json:"key" validate:"required,min=1,max=50"`
	Label        string          `json:"label" validate:"required,min=1,max=100"`
	Multiplier   decimal.Decimal `json:"multiplier" validate:"gt=0"`
	DisplayOrder int             `json:"displayOrder" validate:"gte=0"`
	IsActive     *bool           `json:"isActive"`
}

type UpdateMultiplierRequest struct {
	Key          *string          `json:"key" validate:"omitempty,min=1,max=50"`
	Label        *string          `json:"label" validate:"omitempty,min=1,max=100"`
	Multiplier   *decimal.Decimal `json:"multiplier" validate:"omitempty,gt=0"`
	DisplayOrder *int             `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive     *bool            `json:"isActive"`
}

type MultiplierResponse struct {
	ID           uuid.UUID       `json:"id"`
	Key          string          `json:"key"`
	Label        string          `json:"label"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	DisplayOrder int             `json:"displayOrder"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

// =============================================================================
// Calculation rules
// =============================================================================

type CreateRuleRequest struct {
	Key          string `json:"key" validate:"required,min=1,max=100"`
	Value        string `json:"value" validate:"required,max=500"`
	ValueType    string `json:"valueType" validate:"required,oneof=number boolean string"`
	Description  string `json:"description" validate:"max=500"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
	IsActive     *bool  `json:"isActive"`
}

type UpdateRuleRequest struct {
	Key          *string `json:"key" validate:"omitempty,min=1,max=100"`
	Value        *string `json:"value" validate:"omitempty,max=500"`
	ValueType    *string `json:"valueType" validate:"omitempty,oneof=number boolean string"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"isActive"`
}

type RuleResponse struct {
	ID           uuid.UUID `json:"id"`
	Key          string    `json:"key"`
	Value        string    `json:"value"`
	ValueType    string    `json:"valueType"`
	Description  string    `json:"description"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    string    `json:"createdAt,omitempty"`
	UpdatedAt    string    `json:"updatedAt,omitempty"`
}

// =============================================================================
// VAT
// =============================================================================

type UpdateVatRequest struct {
	Percentage decimal.Decimal `json:"percentage" validate:"gte=0,lte=100"`
}

type VatResponse struct {
	ID            uuid.UUID       `json:"id"`
	Percentage    decimal.Decimal `json:"percentage"`
	IsActive      bool            `json:"isActive"`
	EffectiveFrom string          `json:"effectiveFrom"`
	CreatedBy     *uuid.UUID      `json:"createdBy,omitempty"`
	CreatedAt     string          `json:"createdAt"`
}

type VatHistoryRequest struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// =============================================================================
// Public configuration snapshot
// =============================================================================

// ConfigSnapshot is the active pricing configuration served to the
// calculator and cached between admin mutations.
type ConfigSnapshot struct {
	Cities             []CityResponse         `json:"cities"`
	NeighborhoodLevels []LevelResponse        `json:"neighborhoodLevels"`
	Neighborhoods      []NeighborhoodResponse `json:"neighborhoods"`
	Packages           []PackageResponse      `json:"packages"`
	PropertyAges       []MultiplierResponse   `json:"propertyAges"`
	InspectionPurposes []MultiplierResponse   `json:"inspectionPurposes"`
	VATPercentage      decimal.Decimal        `json:"vatPercentage"`
	Rules              map[string]string      `json:"rules"`
}
