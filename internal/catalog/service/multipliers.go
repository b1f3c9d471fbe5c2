package service

import (
	"context"
	"strings"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"

	"github.com/google/uuid"
)

// ListMultipliers retrieves property-age or inspection-purpose buckets.
func (s *Service) ListMultipliers(ctx context.Context, kind repository.MultiplierKind, req transport.ListRequest) (transport.ListResponse[transport.MultiplierResponse], error) {
	params, page, pageSize, err := listParams(req)
	if err != nil {
		return transport.ListResponse[transport.MultiplierResponse]{}, err
	}
	items, total, err := s.repo.ListMultipliers(ctx, kind, params)
	if err != nil {
		return transport.ListResponse[transport.MultiplierResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toMultiplierResponse), nil
}

func (s *Service) GetMultiplier(ctx context.Context, kind repository.MultiplierKind, id uuid.UUID) (transport.MultiplierResponse, error) {
	m, err := s.repo.GetMultiplier(ctx, kind, id)
	if err != nil {
		return transport.MultiplierResponse{}, err
	}
	return toMultiplierResponse(m), nil
}

func (s *Service) CreateMultiplier(ctx context.Context, actor audittransport.Actor, kind repository.MultiplierKind, req transport.CreateMultiplierRequest) (transport.MultiplierResponse, error) {
	m, err := s.repo.CreateMultiplier(ctx, kind, repository.Multiplier{
		Key:          normalizeKey(req.Key),
		Label:        strings.TrimSpace(req.Label),
		Multiplier:   req.Multiplier,
		DisplayOrder: req.DisplayOrder,
		IsActive:     activeOrDefault(req.IsActive),
	})
	if err != nil {
		return transport.MultiplierResponse{}, err
	}

	resp := toMultiplierResponse(m)
	s.mutated(ctx, actor, audittransport.ActionCreate, kind.Table(), m.ID, nil, resp)
	return resp, nil
}

func (s *Service) UpdateMultiplier(ctx context.Context, actor audittransport.Actor, kind repository.MultiplierKind, id uuid.UUID, req transport.UpdateMultiplierRequest) (transport.MultiplierResponse, error) {
	current, err := s.repo.GetMultiplier(ctx, kind, id)
	if err != nil {
		return transport.MultiplierResponse{}, err
	}

	next := current
	if req.Key != nil {
		next.Key = normalizeKey(*req.Key)
	}
	if req.Label != nil {
		next.Label = strings.TrimSpace(*req.Label)
	}
	if req.Multiplier != nil {
		next.Multiplier = *req.Multiplier
	}
	if req.DisplayOrder != nil {
		next.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateMultiplier(ctx, kind, next)
	if err != nil {
		return transport.MultiplierResponse{}, err
	}

	resp := toMultiplierResponse(updated)
	s.mutated(ctx, actor, audittransport.ActionUpdate, kind.Table(), id, toMultiplierResponse(current), resp)
	return resp, nil
}

// DeleteMultiplier soft-deletes a bucket.
func (s *Service) DeleteMultiplier(ctx context.Context, actor audittransport.Actor, kind repository.MultiplierKind, id uuid.UUID) error {
	current, err := s.repo.GetMultiplier(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateMultiplier(ctx, kind, id); err != nil {
		return err
	}
	s.mutated(ctx, actor, audittransport.ActionDelete, kind.Table(), id, toMultiplierResponse(current), nil)
	return nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
