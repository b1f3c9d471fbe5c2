package service

import (
	"context"
	"fmt"
	"strings"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/internal/pricing"
	"inspection_portal/platform/apperr"

	"github.com/google/uuid"
)

const tablePackages = "packages"

// ListPackages retrieves packages with their tiers.
func (s *Service) ListPackages(ctx context.Context, req transport.ListRequest) (transport.ListResponse[transport.PackageResponse], error) {
	params, page, pageSize, err := listParams(req)
	if err != nil {
		return transport.ListResponse[transport.PackageResponse]{}, err
	}
	items, total, err := s.repo.ListPackages(ctx, params)
	if err != nil {
		return transport.ListResponse[transport.PackageResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toPackageResponse), nil
}

func (s *Service) GetPackage(ctx context.Context, id uuid.UUID) (transport.PackageResponse, error) {
	p, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return transport.PackageResponse{}, err
	}
	return toPackageResponse(p), nil
}

// CreatePackage creates a package. Tiers must partition the area axis.
func (s *Service) CreatePackage(ctx context.Context, actor audittransport.Actor, req transport.CreatePackageRequest) (transport.PackageResponse, error) {
	tiers, err := toTiers(req.Tiers)
	if err != nil {
		return transport.PackageResponse{}, err
	}

	p, err := s.repo.CreatePackage(ctx, repository.Package{
		Name:         strings.ToLower(strings.TrimSpace(req.Name)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Description:  strings.TrimSpace(req.Description),
		BasePrice:    req.BasePrice,
		PricingMode:  valueOr(req.PricingMode, string(pricing.ModeIncremental)),
		AreaBasis:    valueOr(req.AreaBasis, string(pricing.AreaCombined)),
		DisplayOrder: req.DisplayOrder,
		IsActive:     activeOrDefault(req.IsActive),
		Tiers:        tiers,
	})
	if err != nil {
		return transport.PackageResponse{}, err
	}

	resp := toPackageResponse(p)
	s.mutated(ctx, actor, audittransport.ActionCreate, tablePackages, p.ID, nil, resp)
	s.log.Info("package created", "id", p.ID, "name", p.Name, "tiers", len(p.Tiers))
	return resp, nil
}

func (s *Service) UpdatePackage(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdatePackageRequest) (transport.PackageResponse, error) {
	current, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return transport.PackageResponse{}, err
	}

	next := current
	if req.Name != nil {
		next.Name = strings.ToLower(strings.TrimSpace(*req.Name))
	}
	if req.DisplayName != nil {
		next.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Description != nil {
		next.Description = strings.TrimSpace(*req.Description)
	}
	if req.BasePrice != nil {
		next.BasePrice = *req.BasePrice
	}
	if req.PricingMode != nil {
		next.PricingMode = *req.PricingMode
	}
	if req.AreaBasis != nil {
		next.AreaBasis = *req.AreaBasis
	}
	if req.DisplayOrder != nil {
		next.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	replaceTiers := req.Tiers != nil
	if replaceTiers {
		if next.Tiers, err = toTiers(req.Tiers); err != nil {
			return transport.PackageResponse{}, err
		}
	}

	updated, err := s.repo.UpdatePackage(ctx, next, replaceTiers)
	if err != nil {
		return transport.PackageResponse{}, err
	}

	resp := toPackageResponse(updated)
	s.mutated(ctx, actor, audittransport.ActionUpdate, tablePackages, id, toPackageResponse(current), resp)
	return resp, nil
}

// DeletePackage soft-deletes a package.
func (s *Service) DeletePackage(ctx context.Context, actor audittransport.Actor, id uuid.UUID) error {
	current, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivatePackage(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, actor, audittransport.ActionDelete, tablePackages, id, toPackageResponse(current), nil)
	return nil
}

// toTiers validates the tier list as a partition and converts it for storage.
func toTiers(reqs []transport.TierRequest) ([]repository.Tier, error) {
	candidates := make([]pricing.Tier, len(reqs))
	for i, t := range reqs {
		candidates[i] = pricing.Tier{MinArea: t.MinArea, MaxArea: t.MaxArea, PricePerSqm: t.PricePerSqm}
	}

	if problems := pricing.ValidateTiers(candidates); len(problems) > 0 {
		details := make([]apperr.FieldError, 0, len(problems))
		for _, p := range problems {
			field := "tiers"
			if p.Index >= 0 {
				field = fmt.Sprintf("tiers[%d].%s", p.Index, p.Field)
			}
			details = append(details, apperr.FieldError{Field: field, Message: p.Message})
		}
		return nil, apperr.Validation("invalid tiers").WithDetails(details)
	}

	tiers := make([]repository.Tier, len(reqs))
	for i, t := range reqs {
		tiers[i] = repository.Tier{
			Position:    i,
			MinArea:     t.MinArea,
			MaxArea:     toNullDecimal(t.MaxArea),
			PricePerSqm: t.PricePerSqm,
		}
	}
	return tiers, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
