// Package pricing computes inspection quotes from a configuration snapshot.
//
// The engine is a pure function: it performs no I/O and never reads clocks
// or globals, so every quote can be reproduced from its inputs and the
// snapshot it was computed against.
package pricing

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingMode selects how a tier rate is applied to the area.
type PricingMode string

const (
	// ModeIncremental charges the tier rate on the area above the tier floor.
	ModeIncremental PricingMode = "incremental"
	// ModeFlat charges the tier rate on the whole area.
	ModeFlat PricingMode = "flat"
)

// AreaBasis selects which areas make up the total area of a submission.
type AreaBasis string

const (
	AreaCombined AreaBasis = "combined"
	AreaCovered  AreaBasis = "covered"
	AreaLand     AreaBasis = "land"
)

// Rule keys consulted by Compute.
const (
	RuleMinTotalArea  = "min_total_area"
	RuleMaxTotalArea  = "max_total_area"
	RuleCurrencyScale = "currency_scale"
)

// DefaultCurrencyScale is the number of minor-unit digits (halalas, cents).
const DefaultCurrencyScale int32 = 2

// Stored leads keep areas and amounts as NUMERIC(12,2).
const (
	// MaxCurrencyScale is the largest currency_scale a lead can store exactly.
	MaxCurrencyScale int32 = 2
	// AreaScale is the number of decimals accepted for an area.
	AreaScale int32 = 2
)

// MaxStoredValue is the largest area or amount a lead row can hold.
var MaxStoredValue = decimal.RequireFromString("9999999999.99")

// Tier is an area range [MinArea, MaxArea) with a per-square-meter rate.
// A nil MaxArea is open-ended.
type Tier struct {
	MinArea     decimal.Decimal  `json:"minArea"`
	MaxArea     *decimal.Decimal `json:"maxArea,omitempty"`
	PricePerSqm decimal.Decimal  `json:"pricePerSqm"`
}

// Contains reports whether area falls inside the tier.
func (t Tier) Contains(area decimal.Decimal) bool {
	if area.LessThan(t.MinArea) {
		return false
	}
	return t.MaxArea == nil || area.LessThan(*t.MaxArea)
}

// Package is a priced inspection package.
type Package struct {
	ID        uuid.UUID
	Name      string
	BasePrice decimal.Decimal
	Mode      PricingMode
	AreaBasis AreaBasis
	Tiers     []Tier
}

// Neighborhood carries the location adjustment for a submission.
type Neighborhood struct {
	ID              uuid.UUID
	CityID          uuid.UUID
	Name            string
	LevelCode       string
	Multiplier      *decimal.Decimal
	LevelMultiplier decimal.Decimal
	ApplyAboveArea  decimal.Decimal
}

// EffectiveMultiplier returns the override, or the level default.
func (n Neighborhood) EffectiveMultiplier() decimal.Decimal {
	if n.Multiplier != nil {
		return *n.Multiplier
	}
	return n.LevelMultiplier
}

// Rules is the active calculation-rule key/value set.
type Rules map[string]string

// Number returns the numeric rule at key, if present and parseable.
func (r Rules) Number(key string) (decimal.Decimal, bool) {
	raw, ok := r[key]
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Bool returns the boolean rule at key, or fallback.
func (r Rules) Bool(key string, fallback bool) bool {
	raw, ok := r[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return b
}

// Config is the snapshot of active pricing parameters.
type Config struct {
	Packages           map[uuid.UUID]Package
	Cities             map[uuid.UUID]string
	Neighborhoods      map[uuid.UUID]Neighborhood
	AgeMultipliers     map[string]decimal.Decimal
	PurposeMultipliers map[string]decimal.Decimal
	VATPercentage      decimal.Decimal
	Rules              Rules
}

// Input is one calculator submission.
type Input struct {
	PackageID      uuid.UUID
	CityID         uuid.UUID
	NeighborhoodID uuid.UUID
	PropertyAge    string
	Purpose        string
	LandArea       decimal.Decimal
	CoveredArea    decimal.Decimal
}

// Breakdown exposes every intermediate value of a computed quote.
type Breakdown struct {
	PackageName                   string          `json:"packageName"`
	PricingMode                   PricingMode     `json:"pricingMode"`
	AreaBasis                     AreaBasis       `json:"areaBasis"`
	LandArea                      decimal.Decimal `json:"landArea"`
	CoveredArea                   decimal.Decimal `json:"coveredArea"`
	TotalArea                     decimal.Decimal `json:"totalArea"`
	Tier                          Tier            `json:"tier"`
	PackageBasePrice              decimal.Decimal `json:"packageBasePrice"`
	BasePrice                     decimal.Decimal `json:"basePrice"`
	AgeMultiplier                 decimal.Decimal `json:"ageMultiplier"`
	PurposeMultiplier             decimal.Decimal `json:"purposeMultiplier"`
	NeighborhoodMultiplier        decimal.Decimal `json:"neighborhoodMultiplier"`
	NeighborhoodMultiplierApplied bool            `json:"neighborhoodMultiplierApplied"`
	NeighborhoodThreshold         decimal.Decimal `json:"neighborhoodThreshold"`
	CombinedMultiplier            decimal.Decimal `json:"combinedMultiplier"`
	PriceBeforeVAT                decimal.Decimal `json:"priceBeforeVat"`
	VATPercentage                 decimal.Decimal `json:"vatPercentage"`
	VATAmount                     decimal.Decimal `json:"vatAmount"`
	FinalPrice                    decimal.Decimal `json:"finalPrice"`
}

// ValidationError reports an input that cannot be priced.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
