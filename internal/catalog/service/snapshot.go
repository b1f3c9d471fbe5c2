package service

import (
	"context"
	"fmt"
	"strconv"

	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/internal/pricing"
	"inspection_portal/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Snapshot returns the active pricing configuration, from cache when
// possible. Cache failures degrade to a database read.
//
// Cached snapshots are keyed by a generation that every mutation bumps, so a
// load that raced a mutation is written under a generation nobody reads.
func (s *Service) Snapshot(ctx context.Context) (transport.ConfigSnapshot, error) {
	gen, err := s.cache.Counter(ctx, snapshotGenerationKey)
	if err != nil {
		s.log.WithContext(ctx).Warn("config snapshot generation read failed", "error", err)
		return s.loadSnapshot(ctx)
	}
	key := snapshotKey(gen)

	var snap transport.ConfigSnapshot
	found, err := s.cache.GetJSON(ctx, key, &snap)
	if err != nil {
		s.log.WithContext(ctx).Warn("config snapshot cache read failed", "error", err)
	}
	if found && err == nil {
		return snap, nil
	}

	snap, err = s.loadSnapshot(ctx)
	if err != nil {
		return transport.ConfigSnapshot{}, err
	}

	if err := s.cache.SetJSON(ctx, key, snap, s.cacheTTL); err != nil {
		s.log.WithContext(ctx).Warn("config snapshot cache write failed", "error", err)
	}
	return snap, nil
}

func snapshotKey(gen int64) string {
	return snapshotCacheKey + ":" + strconv.FormatInt(gen, 10)
}

// PricingConfig returns the snapshot in the form the quote engine consumes.
func (s *Service) PricingConfig(ctx context.Context) (pricing.Config, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return pricing.Config{}, err
	}
	return BuildPricingConfig(snap), nil
}

func (s *Service) loadSnapshot(ctx context.Context) (transport.ConfigSnapshot, error) {
	var (
		cities        []repository.City
		levels        []repository.NeighborhoodLevel
		neighborhoods []repository.Neighborhood
		packages      []repository.Package
		ages          []repository.Multiplier
		purposes      []repository.Multiplier
		rules         []repository.CalculationRule
		vat           repository.VatSetting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cities, err = s.repo.ActiveCities(gctx)
		return
	})
	g.Go(func() (err error) {
		levels, err = s.repo.ActiveLevels(gctx)
		return
	})
	g.Go(func() (err error) {
		neighborhoods, err = s.repo.ActiveNeighborhoods(gctx)
		return
	})
	g.Go(func() (err error) {
		packages, err = s.repo.ActivePackages(gctx)
		return
	})
	g.Go(func() (err error) {
		ages, err = s.repo.ActiveMultipliers(gctx, repository.PropertyAge)
		return
	})
	g.Go(func() (err error) {
		purposes, err = s.repo.ActiveMultipliers(gctx, repository.InspectionPurpose)
		return
	})
	g.Go(func() (err error) {
		rules, err = s.repo.ActiveRules(gctx)
		return
	})
	g.Go(func() error {
		v, err := s.repo.GetActiveVat(gctx)
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Wrap(apperr.KindInternal, "pricing configuration has no active vat setting", err)
		}
		vat = v
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.ConfigSnapshot{}, fmt.Errorf("load config snapshot: %w", err)
	}

	snap := transport.ConfigSnapshot{
		Cities:             make([]transport.CityResponse, 0, len(cities)),
		NeighborhoodLevels: make([]transport.LevelResponse, 0, len(levels)),
		Neighborhoods:      make([]transport.NeighborhoodResponse, 0, len(neighborhoods)),
		Packages:           make([]transport.PackageResponse, 0, len(packages)),
		PropertyAges:       make([]transport.MultiplierResponse, 0, len(ages)),
		InspectionPurposes: make([]transport.MultiplierResponse, 0, len(purposes)),
		VATPercentage:      vat.Percentage,
		Rules:              make(map[string]string, len(rules)),
	}
	for _, c := range cities {
		snap.Cities = append(snap.Cities, publicCity(c))
	}
	for _, l := range levels {
		snap.NeighborhoodLevels = append(snap.NeighborhoodLevels, publicLevel(l))
	}
	for _, n := range neighborhoods {
		snap.Neighborhoods = append(snap.Neighborhoods, publicNeighborhood(n))
	}
	for _, p := range packages {
		snap.Packages = append(snap.Packages, publicPackage(p))
	}
	for _, m := range ages {
		snap.PropertyAges = append(snap.PropertyAges, publicMultiplier(m))
	}
	for _, m := range purposes {
		snap.InspectionPurposes = append(snap.InspectionPurposes, publicMultiplier(m))
	}
	for _, r := range rules {
		snap.Rules[r.Key] = r.Value
	}
	return snap, nil
}

// BuildPricingConfig indexes a snapshot for the quote engine.
func BuildPricingConfig(snap transport.ConfigSnapshot) pricing.Config {
	cfg := pricing.Config{
		Packages:           make(map[uuid.UUID]pricing.Package, len(snap.Packages)),
		Cities:             make(map[uuid.UUID]string, len(snap.Cities)),
		Neighborhoods:      make(map[uuid.UUID]pricing.Neighborhood, len(snap.Neighborhoods)),
		AgeMultipliers:     make(map[string]decimal.Decimal, len(snap.PropertyAges)),
		PurposeMultipliers: make(map[string]decimal.Decimal, len(snap.InspectionPurposes)),
		VATPercentage:      snap.VATPercentage,
		Rules:              pricing.Rules(snap.Rules),
	}
	if cfg.Rules == nil {
		cfg.Rules = pricing.Rules{}
	}

	for _, p := range snap.Packages {
		tiers := make([]pricing.Tier, 0, len(p.Tiers))
		for _, t := range p.Tiers {
			tiers = append(tiers, pricing.Tier{MinArea: t.MinArea, MaxArea: t.MaxArea, PricePerSqm: t.PricePerSqm})
		}
		cfg.Packages[p.ID] = pricing.Package{
			ID:        p.ID,
			Name:      p.DisplayName,
			BasePrice: p.BasePrice,
			Mode:      pricing.PricingMode(p.PricingMode),
			AreaBasis: pricing.AreaBasis(p.AreaBasis),
			Tiers:     tiers,
		}
	}
	for _, c := range snap.Cities {
		cfg.Cities[c.ID] = c.Name
	}
	for _, n := range snap.Neighborhoods {
		cfg.Neighborhoods[n.ID] = pricing.Neighborhood{
			ID:              n.ID,
			CityID:          n.CityID,
			Name:            n.Name,
			LevelCode:       n.LevelCode,
			Multiplier:      n.Multiplier,
			LevelMultiplier: n.LevelMultiplier,
			ApplyAboveArea:  n.ApplyAboveArea,
		}
	}
	for _, m := range snap.PropertyAges {
		cfg.AgeMultipliers[m.Key] = m.Multiplier
	}
	for _, m := range snap.InspectionPurposes {
		cfg.PurposeMultipliers[m.Key] = m.Multiplier
	}
	return cfg
}

// The public snapshot omits audit timestamps.

func publicCity(c repository.City) transport.CityResponse {
	resp := toCityResponse(c)
	resp.CreatedAt, resp.UpdatedAt = "", ""
	return resp
}

func publicLevel(l repository.NeighborhoodLevel) transport.LevelResponse {
	resp := toLevelResponse(l)
	resp.CreatedAt, resp.UpdatedAt = "", ""
	return resp
}

func publicNeighborhood(n repository.Neighborhood) transport.NeighborhoodResponse {
	resp := toNeighborhoodResponse(n)
	resp.CreatedAt, resp.UpdatedAt = "", ""
	return resp
}

func publicPackage(p repository.Package) transport.PackageResponse {
	resp := toPackageResponse(p)
	resp.CreatedAt, resp.UpdatedAt = "", ""
	return resp
}

func publicMultiplier(m repository.Multiplier) transport.MultiplierResponse {
	resp := toMultiplierResponse(m)
	resp.CreatedAt, resp.UpdatedAt = "", ""
	return resp
}
