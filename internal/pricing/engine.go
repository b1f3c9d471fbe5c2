package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// Compute prices a submission against cfg. Any unknown reference, negative
// area or unmatched tier yields a *ValidationError.
func Compute(in Input, cfg Config) (Breakdown, error) {
	pkg, ok := cfg.Packages[in.PackageID]
	if !ok {
		return Breakdown{}, invalid("packageId", "unknown package")
	}
	if _, ok := cfg.Cities[in.CityID]; !ok {
		return Breakdown{}, invalid("cityId", "unknown city")
	}
	hood, ok := cfg.Neighborhoods[in.NeighborhoodID]
	if !ok {
		return Breakdown{}, invalid("neighborhoodId", "unknown neighborhood")
	}
	if hood.CityID != in.CityID {
		return Breakdown{}, invalid("neighborhoodId", "neighborhood does not belong to city")
	}

	if err := checkArea("landArea", in.LandArea); err != nil {
		return Breakdown{}, err
	}
	if err := checkArea("coveredArea", in.CoveredArea); err != nil {
		return Breakdown{}, err
	}

	total, basis := TotalArea(pkg.AreaBasis, in.LandArea, in.CoveredArea)
	if total.GreaterThan(MaxStoredValue) {
		return Breakdown{}, invalid("totalArea", "is too large")
	}
	if floor, ok := cfg.Rules.Number(RuleMinTotalArea); ok && total.LessThan(floor) {
		return Breakdown{}, invalid("totalArea", fmt.Sprintf("must be at least %s", floor.String()))
	}
	if ceiling, ok := cfg.Rules.Number(RuleMaxTotalArea); ok && total.GreaterThan(ceiling) {
		return Breakdown{}, invalid("totalArea", fmt.Sprintf("must be at most %s", ceiling.String()))
	}

	tier, ok := MatchTier(pkg.Tiers, total)
	if !ok {
		return Breakdown{}, invalid("totalArea", "no price tier covers this area")
	}

	ageMul, ok := cfg.AgeMultipliers[in.PropertyAge]
	if !ok {
		return Breakdown{}, invalid("propertyAge", "unknown property age")
	}
	purposeMul, ok := cfg.PurposeMultipliers[in.Purpose]
	if !ok {
		return Breakdown{}, invalid("purpose", "unknown inspection purpose")
	}

	scale := currencyScale(cfg.Rules)

	mode := pkg.Mode
	if mode == "" {
		mode = ModeIncremental
	}
	base := BasePrice(pkg.BasePrice, tier, total, mode).Round(scale)

	hoodMul := one
	applied := total.GreaterThan(hood.ApplyAboveArea)
	if applied {
		hoodMul = hood.EffectiveMultiplier()
	}

	combined := ageMul.Mul(purposeMul).Mul(hoodMul)
	beforeVAT := base.Mul(combined).Round(scale)
	vat := VATAmount(beforeVAT, cfg.VATPercentage, scale)
	if beforeVAT.Add(vat).GreaterThan(MaxStoredValue) {
		return Breakdown{}, invalid("totalArea", "quote exceeds the supported price range")
	}

	return Breakdown{
		PackageName:                   pkg.Name,
		PricingMode:                   mode,
		AreaBasis:                     basis,
		LandArea:                      in.LandArea,
		CoveredArea:                   in.CoveredArea,
		TotalArea:                     total,
		Tier:                          tier,
		PackageBasePrice:              pkg.BasePrice,
		BasePrice:                     base,
		AgeMultiplier:                 ageMul,
		PurposeMultiplier:             purposeMul,
		NeighborhoodMultiplier:        hoodMul,
		NeighborhoodMultiplierApplied: applied,
		NeighborhoodThreshold:         hood.ApplyAboveArea,
		CombinedMultiplier:            combined,
		PriceBeforeVAT:                beforeVAT,
		VATPercentage:                 cfg.VATPercentage,
		VATAmount:                     vat,
		FinalPrice:                    beforeVAT.Add(vat),
	}, nil
}

// TotalArea combines land and covered area according to basis. An empty
// basis means combined.
func TotalArea(basis AreaBasis, land, covered decimal.Decimal) (decimal.Decimal, AreaBasis) {
	switch basis {
	case AreaCovered:
		return covered, AreaCovered
	case AreaLand:
		return land, AreaLand
	default:
		return land.Add(covered), AreaCombined
	}
}

// MatchTier returns the first tier, in ascending order, containing area.
func MatchTier(tiers []Tier, area decimal.Decimal) (Tier, bool) {
	for _, t := range tiers {
		if t.Contains(area) {
			return t, true
		}
	}
	return Tier{}, false
}

// BasePrice applies the tier rate to the area on top of the package price.
func BasePrice(packagePrice decimal.Decimal, tier Tier, area decimal.Decimal, mode PricingMode) decimal.Decimal {
	billable := area
	if mode != ModeFlat {
		billable = area.Sub(tier.MinArea)
	}
	return packagePrice.Add(tier.PricePerSqm.Mul(billable))
}

// VATAmount is price × pct / 100 rounded half-up to scale digits.
// Prices are never negative, so decimal's half-away-from-zero rounding is
// half-up here.
func VATAmount(price, pct decimal.Decimal, scale int32) decimal.Decimal {
	return price.Mul(pct).Div(oneHundred).Round(scale)
}

func checkArea(field string, area decimal.Decimal) *ValidationError {
	if area.IsNegative() {
		return invalid(field, "must not be negative")
	}
	if !area.Equal(area.Truncate(AreaScale)) {
		return invalid(field, fmt.Sprintf("must have at most %d decimal places", AreaScale))
	}
	if area.GreaterThan(MaxStoredValue) {
		return invalid(field, "is too large")
	}
	return nil
}

// currencyScale reads the rule, falling back to the default when it is
// missing or outside [0, MaxCurrencyScale].
func currencyScale(rules Rules) int32 {
	if v, ok := rules.Number(RuleCurrencyScale); ok && v.IsInteger() && !v.IsNegative() && v.LessThanOrEqual(decimal.NewFromInt32(MaxCurrencyScale)) {
		return int32(v.IntPart())
	}
	return DefaultCurrencyScale
}
