package service

import (
	"context"
	"strings"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/apperr"

	"github.com/google/uuid"
)

const (
	tableCities             = "cities"
	tableNeighborhoodLevels = "neighborhood_levels"
	tableNeighborhoods      = "neighborhoods"
)

// ListCities retrieves cities with search and pagination.
func (s *Service) ListCities(ctx context.Context, req transport.ListRequest) (transport.ListResponse[transport.CityResponse], error) {
	params, page, pageSize, err := listParams(req)
	if err != nil {
		return transport.ListResponse[transport.CityResponse]{}, err
	}
	items, total, err := s.repo.ListCities(ctx, params)
	if err != nil {
		return transport.ListResponse[transport.CityResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toCityResponse), nil
}

func (s *Service) GetCity(ctx context.Context, id uuid.UUID) (transport.CityResponse, error) {
	c, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return transport.CityResponse{}, err
	}
	return toCityResponse(c), nil
}

func (s *Service) CreateCity(ctx context.Context, actor audittransport.Actor, req transport.CreateCityRequest) (transport.CityResponse, error) {
	c, err := s.repo.CreateCity(ctx, repository.City{
		Name:         strings.TrimSpace(req.Name),
		DisplayOrder: req.DisplayOrder,
		IsActive:     activeOrDefault(req.IsActive),
	})
	if err != nil {
		return transport.CityResponse{}, err
	}

	resp := toCityResponse(c)
	s.mutated(ctx, actor, audittransport.ActionCreate, tableCities, c.ID, nil, resp)
	s.log.Info("city created", "id", c.ID, "name", c.Name)
	return resp, nil
}

func (s *Service) UpdateCity(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdateCityRequest) (transport.CityResponse, error) {
	current, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return transport.CityResponse{}, err
	}

	next := current
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.DisplayOrder != nil {
		next.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateCity(ctx, next)
	if err != nil {
		return transport.CityResponse{}, err
	}

	resp := toCityResponse(updated)
	s.mutated(ctx, actor, audittransport.ActionUpdate, tableCities, id, toCityResponse(current), resp)
	return resp, nil
}

// DeleteCity soft-deletes a city.
func (s *Service) DeleteCity(ctx context.Context, actor audittransport.Actor, id uuid.UUID) error {
	current, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateCity(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, actor, audittransport.ActionDelete, tableCities, id, toCityResponse(current), nil)
	return nil
}

// ListLevels retrieves neighborhood levels with search and pagination.
func (s *Service) ListLevels(ctx context.Context, req transport.ListRequest) (transport.ListResponse[transport.LevelResponse], error) {
	params, page, pageSize, err := listParams(req)
	if err != nil {
		return transport.ListResponse[transport.LevelResponse]{}, err
	}
	items, total, err := s.repo.ListLevels(ctx, params)
	if err != nil {
		return transport.ListResponse[transport.LevelResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toLevelResponse), nil
}

func (s *Service) GetLevel(ctx context.Context, id uuid.UUID) (transport.LevelResponse, error) {
	l, err := s.repo.GetLevel(ctx, id)
	if err != nil {
		return transport.LevelResponse{}, err
	}
	return toLevelResponse(l), nil
}

func (s *Service) CreateLevel(ctx context.Context, actor audittransport.Actor, req transport.CreateLevelRequest) (transport.LevelResponse, error) {
	l, err := s.repo.CreateLevel(ctx, repository.NeighborhoodLevel{
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:         strings.TrimSpace(req.Name),
		Multiplier:   req.Multiplier,
		DisplayOrder: req.DisplayOrder,
		IsActive:     activeOrDefault(req.IsActive),
	})
	if err != nil {
		return transport.LevelResponse{}, err
	}

	resp := toLevelResponse(l)
	s.mutated(ctx, actor, audittransport.ActionCreate, tableNeighborhoodLevels, l.ID, nil, resp)
	return resp, nil
}

func (s *Service) UpdateLevel(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdateLevelRequest) (transport.LevelResponse, error) {
	current, err := s.repo.GetLevel(ctx, id)
	if err != nil {
		return transport.LevelResponse{}, err
	}

	next := current
	if req.Code != nil {
		next.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
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

	updated, err := s.repo.UpdateLevel(ctx, next)
	if err != nil {
		return transport.LevelResponse{}, err
	}

	resp := toLevelResponse(updated)
	s.mutated(ctx, actor, audittransport.ActionUpdate, tableNeighborhoodLevels, id, toLevelResponse(current), resp)
	return resp, nil
}

// DeleteLevel soft-deletes a neighborhood level.
func (s *Service) DeleteLevel(ctx context.Context, actor audittransport.Actor, id uuid.UUID) error {
	current, err := s.repo.GetLevel(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateLevel(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, actor, audittransport.ActionDelete, tableNeighborhoodLevels, id, toLevelResponse(current), nil)
	return nil
}

// ListNeighborhoods retrieves neighborhoods, optionally scoped to a city.
func (s *Service) ListNeighborhoods(ctx context.Context, req transport.ListRequest) (transport.ListResponse[transport.NeighborhoodResponse], error) {
	params, page, pageSize, err := listParams(req)
	if err != nil {
		return transport.ListResponse[transport.NeighborhoodResponse]{}, err
	}
	items, total, err := s.repo.ListNeighborhoods(ctx, params)
	if err != nil {
		return transport.ListResponse[transport.NeighborhoodResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toNeighborhoodResponse), nil
}

func (s *Service) GetNeighborhood(ctx context.Context, id uuid.UUID) (transport.NeighborhoodResponse, error) {
	n, err := s.repo.GetNeighborhood(ctx, id)
	if err != nil {
		return transport.NeighborhoodResponse{}, err
	}
	return toNeighborhoodResponse(n), nil
}

func (s *Service) CreateNeighborhood(ctx context.Context, actor audittransport.Actor, req transport.CreateNeighborhoodRequest) (transport.NeighborhoodResponse, error) {
	if err := s.checkNeighborhoodRefs(ctx, req.CityID, req.LevelID); err != nil {
		return transport.NeighborhoodResponse{}, err
	}

	n, err := s.repo.CreateNeighborhood(ctx, repository.Neighborhood{
		CityID:         req.CityID,
		LevelID:        req.LevelID,
		Name:           strings.TrimSpace(req.Name),
		Multiplier:     toNullDecimal(req.Multiplier),
		ApplyAboveArea: req.ApplyAboveArea,
		DisplayOrder:   req.DisplayOrder,
		IsActive:       activeOrDefault(req.IsActive),
	})
	if err != nil {
		return transport.NeighborhoodResponse{}, err
	}

	resp := toNeighborhoodResponse(n)
	s.mutated(ctx, actor, audittransport.ActionCreate, tableNeighborhoods, n.ID, nil, resp)
	return resp, nil
}

func (s *Service) UpdateNeighborhood(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdateNeighborhoodRequest) (transport.NeighborhoodResponse, error) {
	current, err := s.repo.GetNeighborhood(ctx, id)
	if err != nil {
		return transport.NeighborhoodResponse{}, err
	}

	next := current
	if req.CityID != nil {
		next.CityID = *req.CityID
	}
	if req.LevelID != nil {
		next.LevelID = *req.LevelID
	}
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.Multiplier.Set {
		if req.Multiplier.Value != nil && !req.Multiplier.Value.IsPositive() {
			return transport.NeighborhoodResponse{}, apperr.InvalidField("multiplier", "must be greater than 0")
		}
		next.Multiplier = toNullDecimal(req.Multiplier.Value)
	}
	if req.ApplyAboveArea != nil {
		next.ApplyAboveArea = *req.ApplyAboveArea
	}
	if req.DisplayOrder != nil {
		next.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	if next.CityID != current.CityID || next.LevelID != current.LevelID {
		if err := s.checkNeighborhoodRefs(ctx, next.CityID, next.LevelID); err != nil {
			return transport.NeighborhoodResponse{}, err
		}
	}

	updated, err := s.repo.UpdateNeighborhood(ctx, next)
	if err != nil {
		return transport.NeighborhoodResponse{}, err
	}

	resp := toNeighborhoodResponse(updated)
	s.mutated(ctx, actor, audittransport.ActionUpdate, tableNeighborhoods, id, toNeighborhoodResponse(current), resp)
	return resp, nil
}

// DeleteNeighborhood soft-deletes a neighborhood. Leads that reference it
// keep their denormalized name.
func (s *Service) DeleteNeighborhood(ctx context.Context, actor audittransport.Actor, id uuid.UUID) error {
	current, err := s.repo.GetNeighborhood(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateNeighborhood(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, actor, audittransport.ActionDelete, tableNeighborhoods, id, toNeighborhoodResponse(current), nil)
	return nil
}

func (s *Service) checkNeighborhoodRefs(ctx context.Context, cityID, levelID uuid.UUID) error {
	if _, err := s.repo.GetCity(ctx, cityID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.InvalidField("cityId", "unknown city")
		}
		return err
	}
	if _, err := s.repo.GetLevel(ctx, levelID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.InvalidField("levelId", "unknown neighborhood level")
		}
		return err
	}
	return nil
}
