package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/internal/pricing"
	"inspection_portal/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const tableCalculationRules = "calculation_rules"

func (s *Service) ListRules(ctx context.Context, req transport.ListRequest) (transport.ListResponse[transport.RuleResponse], error) {
	params, page, pageSize, err := listParams(req)
	if err != nil {
		return transport.ListResponse[transport.RuleResponse]{}, err
	}
	items, total, err := s.repo.ListRules(ctx, params)
	if err != nil {
		return transport.ListResponse[transport.RuleResponse]{}, err
	}
	return listResponse(items, total, page, pageSize, toRuleResponse), nil
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (transport.RuleResponse, error) {
	r, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return transport.RuleResponse{}, err
	}
	return toRuleResponse(r), nil
}

func (s *Service) CreateRule(ctx context.Context, actor audittransport.Actor, req transport.CreateRuleRequest) (transport.RuleResponse, error) {
	rule := repository.CalculationRule{
		Key:          normalizeKey(req.Key),
		Value:        strings.TrimSpace(req.Value),
		ValueType:    req.ValueType,
		Description:  strings.TrimSpace(req.Description),
		DisplayOrder: req.DisplayOrder,
		IsActive:     activeOrDefault(req.IsActive),
	}
	if err := validateRule(rule); err != nil {
		return transport.RuleResponse{}, err
	}

	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return transport.RuleResponse{}, err
	}

	resp := toRuleResponse(created)
	s.mutated(ctx, actor, audittransport.ActionCreate, tableCalculationRules, created.ID, nil, resp)
	return resp, nil
}

func (s *Service) UpdateRule(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdateRuleRequest) (transport.RuleResponse, error) {
	current, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return transport.RuleResponse{}, err
	}

	next := current
	if req.Key != nil {
		next.Key = normalizeKey(*req.Key)
	}
	if req.Value != nil {
		next.Value = strings.TrimSpace(*req.Value)
	}
	if req.ValueType != nil {
		next.ValueType = *req.ValueType
	}
	if req.Description != nil {
		next.Description = strings.TrimSpace(*req.Description)
	}
	if req.DisplayOrder != nil {
		next.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}
	if err := validateRule(next); err != nil {
		return transport.RuleResponse{}, err
	}

	updated, err := s.repo.UpdateRule(ctx, next)
	if err != nil {
		return transport.RuleResponse{}, err
	}

	resp := toRuleResponse(updated)
	s.mutated(ctx, actor, audittransport.ActionUpdate, tableCalculationRules, id, toRuleResponse(current), resp)
	return resp, nil
}

// DeleteRule soft-deletes a rule.
func (s *Service) DeleteRule(ctx context.Context, actor audittransport.Actor, id uuid.UUID) error {
	current, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateRule(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx, actor, audittransport.ActionDelete, tableCalculationRules, id, toRuleResponse(current), nil)
	return nil
}

// validateRule checks the value against its declared type and the bounds of
// rules the quote engine reads.
func validateRule(rule repository.CalculationRule) error {
	switch rule.ValueType {
	case "number":
		d, err := decimal.NewFromString(rule.Value)
		if err != nil {
			return apperr.InvalidField("value", "must be a number")
		}
		switch rule.Key {
		case pricing.RuleCurrencyScale:
			if !d.IsInteger() || d.IsNegative() || d.GreaterThan(decimal.NewFromInt32(pricing.MaxCurrencyScale)) {
				return apperr.InvalidField("value", fmt.Sprintf("must be a whole number between 0 and %d", pricing.MaxCurrencyScale))
			}
		case pricing.RuleMinTotalArea, pricing.RuleMaxTotalArea:
			if d.IsNegative() {
				return apperr.InvalidField("value", "must not be negative")
			}
		}
	case "boolean":
		if _, err := strconv.ParseBool(rule.Value); err != nil {
			return apperr.InvalidField("value", "must be true or false")
		}
	}

	switch rule.Key {
	case pricing.RuleCurrencyScale, pricing.RuleMinTotalArea, pricing.RuleMaxTotalArea:
		if rule.ValueType != "number" {
			return apperr.InvalidField("valueType", "must be number for "+rule.Key)
		}
	}
	return nil
}
