package service

import (
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"

	"github.com/shopspring/decimal"
)

func toCityResponse(c repository.City) transport.CityResponse {
	return transport.CityResponse{
		ID:           c.ID,
		Name:         c.Name,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

func toLevelResponse(l repository.NeighborhoodLevel) transport.LevelResponse {
	return transport.LevelResponse{
		ID:           l.ID,
		Code:         l.Code,
		Name:         l.Name,
		Multiplier:   l.Multiplier,
		DisplayOrder: l.DisplayOrder,
		IsActive:     l.IsActive,
		CreatedAt:    formatTime(l.CreatedAt),
		UpdatedAt:    formatTime(l.UpdatedAt),
	}
}

func toNeighborhoodResponse(n repository.Neighborhood) transport.NeighborhoodResponse {
	return transport.NeighborhoodResponse{
		ID:              n.ID,
		CityID:          n.CityID,
		CityName:        n.CityName,
		LevelID:         n.LevelID,
		LevelCode:       n.LevelCode,
		LevelMultiplier: n.LevelMultiplier,
		Name:            n.Name,
		Multiplier:      nullDecimalPtr(n.Multiplier),
		ApplyAboveArea:  n.ApplyAboveArea,
		DisplayOrder:    n.DisplayOrder,
		IsActive:        n.IsActive,
		CreatedAt:       formatTime(n.CreatedAt),
		UpdatedAt:       formatTime(n.UpdatedAt),
	}
}

func toPackageResponse(p repository.Package) transport.PackageResponse {
	tiers := make([]transport.TierResponse, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		tiers = append(tiers, transport.TierResponse{
			MinArea:     t.MinArea,
			MaxArea:     nullDecimalPtr(t.MaxArea),
			PricePerSqm: t.PricePerSqm,
		})
	}
	return transport.PackageResponse{
		ID:           p.ID,
		Name:         p.Name,
		DisplayName:  p.DisplayName,
		Description:  p.Description,
		BasePrice:    p.BasePrice,
		PricingMode:  p.PricingMode,
		AreaBasis:    p.AreaBasis,
		DisplayOrder: p.DisplayOrder,
		IsActive:     p.IsActive,
		Tiers:        tiers,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
}

func toMultiplierResponse(m repository.Multiplier) transport.MultiplierResponse {
	return transport.MultiplierResponse{
		ID:           m.ID,
		Key:          m.Key,
		Label:        m.Label,
		Multiplier:   m.Multiplier,
		DisplayOrder: m.DisplayOrder,
		IsActive:     m.IsActive,
		CreatedAt:    formatTime(m.CreatedAt),
		UpdatedAt:    formatTime(m.UpdatedAt),
	}
}

func toRuleResponse(r repository.CalculationRule) transport.RuleResponse {
	return transport.RuleResponse{
		ID:           r.ID,
		Key:          r.Key,
		Value:        r.Value,
		ValueType:    r.ValueType,
		Description:  r.Description,
		DisplayOrder: r.DisplayOrder,
		IsActive:     r.IsActive,
		CreatedAt:    formatTime(r.CreatedAt),
		UpdatedAt:    formatTime(r.UpdatedAt),
	}
}

func toVatResponse(v repository.VatSetting) transport.VatResponse {
	return transport.VatResponse{
		ID:            v.ID,
		Percentage:    v.Percentage,
		IsActive:      v.IsActive,
		EffectiveFrom: formatTime(v.EffectiveFrom),
		CreatedBy:     v.CreatedBy,
		CreatedAt:     formatTime(v.CreatedAt),
	}
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
