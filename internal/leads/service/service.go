// Package service implements the lead workflow: storing calculator
// submissions and the staff-facing list, update, stats and export.
package service

import (
	"context"
	"time"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/leads/repository"
	"inspection_portal/internal/leads/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/sanitize"

	"github.com/google/uuid"
)

const tableLeads = "leads"

// AuditRecorder appends workflow changes to the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, entry audittransport.Entry)
}

// Service provides business logic for leads.
type Service struct {
	repo  repository.Repository
	audit AuditRecorder
	log   *logger.Logger
}

// New creates a new leads service.
func New(repo repository.Repository, audit AuditRecorder, log *logger.Logger) *Service {
	return &Service{repo: repo, audit: audit, log: log}
}

// CreateLead stores one priced submission. Leads are append-only and not
// deduplicated.
func (s *Service) CreateLead(ctx context.Context, in transport.NewLead) (transport.LeadResponse, error) {
	lead, err := s.repo.Create(ctx, repository.Lead{
		FullName:               in.FullName,
		Email:                  in.Email,
		Phone:                  in.Phone,
		CityID:                 in.CityID,
		CityName:               in.CityName,
		NeighborhoodID:         in.NeighborhoodID,
		NeighborhoodName:       in.NeighborhoodName,
		PackageID:              in.PackageID,
		PackageName:            in.PackageName,
		PropertyAgeKey:         in.PropertyAgeKey,
		PurposeKey:             in.PurposeKey,
		LandArea:               in.LandArea,
		CoveredArea:            in.CoveredArea,
		TotalArea:              in.TotalArea,
		BasePrice:              in.BasePrice,
		AgeMultiplier:          in.AgeMultiplier,
		PurposeMultiplier:      in.PurposeMultiplier,
		NeighborhoodMultiplier: in.NeighborhoodMultiplier,
		PriceBeforeVAT:         in.PriceBeforeVAT,
		VATPercentage:          in.VATPercentage,
		VATAmount:              in.VATAmount,
		FinalPrice:             in.FinalPrice,
		Breakdown:              in.Breakdown,
		Source:                 in.Source,
		IPAddress:              in.IPAddress,
		UserAgent:              in.UserAgent,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// List retrieves leads with filtering, sorting and pagination.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page, pageSize := httpkit.NormalizePage(req.Page, req.PageSize)
	params, err := listParams(req)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	params.Offset = httpkit.Offset(page, pageSize)
	params.Limit = pageSize

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
		items[i].Breakdown = nil
	}
	return transport.LeadListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// workflowState is the audited view of a lead.
type workflowState struct {
	Status       transport.LeadStatus `json:"status"`
	Notes        string               `json:"notes"`
	AssignedTo   *uuid.UUID           `json:"assignedTo"`
	FollowUpDate *string              `json:"followUpDate"`
}

func stateOf(r transport.LeadResponse) workflowState {
	return workflowState{Status: r.Status, Notes: r.Notes, AssignedTo: r.AssignedTo, FollowUpDate: r.FollowUpDate}
}

// Update applies a workflow change. Pricing inputs and the breakdown are
// not reachable from here.
func (s *Service) Update(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	update := repository.WorkflowUpdate{
		Notes:         sanitize.TextPtr(req.Notes),
		AssignedToSet: req.AssignedTo.Set,
		AssignedTo:    req.AssignedTo.Value,
		FollowUpSet:   req.FollowUpDate.Set,
		FollowUpDate:  req.FollowUpDate.Value,
	}
	if req.Status != nil {
		status := string(*req.Status)
		update.Status = &status
	}
	if update.Empty() {
		return transport.LeadResponse{}, apperr.BadRequest("no fields to update")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	updated, err := s.repo.UpdateWorkflow(ctx, id, update)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	resp := toLeadResponse(updated)
	s.audit.Record(ctx, audittransport.Entry{
		Actor:     actor,
		Action:    audittransport.ActionUpdate,
		TableName: tableLeads,
		RecordID:  id.String(),
		OldValues: stateOf(toLeadResponse(current)),
		NewValues: stateOf(resp),
	})
	return resp, nil
}

// Stats counts leads per status, reporting zero for unused statuses.
func (s *Service) Stats(ctx context.Context) (transport.StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return transport.StatsResponse{}, err
	}

	resp := transport.StatsResponse{ByStatus: make(map[transport.LeadStatus]int, len(transport.AllStatuses))}
	for _, status := range transport.AllStatuses {
		n := counts[string(status)]
		resp.ByStatus[status] = n
		resp.Total += n
	}
	return resp, nil
}

func listParams(req transport.ListLeadsRequest) (repository.ListParams, error) {
	params := repository.ListParams{
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != "" {
		status := req.Status
		params.Status = &status
	}

	var err error
	if params.PackageID, err = optionalUUID("packageId", req.PackageID); err != nil {
		return params, err
	}
	if params.CityID, err = optionalUUID("cityId", req.CityID); err != nil {
		return params, err
	}
	if params.AssignedTo, err = optionalUUID("assignedTo", req.AssignedTo); err != nil {
		return params, err
	}
	if params.CreatedFrom, err = optionalDate("createdFrom", req.CreatedFrom); err != nil {
		return params, err
	}
	if params.CreatedTo, err = optionalDate("createdTo", req.CreatedTo); err != nil {
		return params, err
	}
	// createdTo is inclusive of the whole day
	if params.CreatedTo != nil {
		next := params.CreatedTo.AddDate(0, 0, 1)
		params.CreatedTo = &next
	}
	if params.CreatedFrom != nil && params.CreatedTo != nil && !params.CreatedFrom.Before(*params.CreatedTo) {
		return params, apperr.InvalidField("createdTo", "must not be before createdFrom")
	}
	return params, nil
}

func optionalUUID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.InvalidField(field, "must be a valid UUID")
	}
	return &id, nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(transport.DateLayout, raw)
	if err != nil {
		return nil, apperr.InvalidField(field, "must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                     l.ID,
		FullName:               l.FullName,
		Email:                  l.Email,
		Phone:                  l.Phone,
		CityID:                 l.CityID,
		CityName:               l.CityName,
		NeighborhoodID:         l.NeighborhoodID,
		NeighborhoodName:       l.NeighborhoodName,
		PackageID:              l.PackageID,
		PackageName:            l.PackageName,
		PropertyAge:            l.PropertyAgeKey,
		Purpose:                l.PurposeKey,
		LandArea:               l.LandArea,
		CoveredArea:            l.CoveredArea,
		TotalArea:              l.TotalArea,
		BasePrice:              l.BasePrice,
		AgeMultiplier:          l.AgeMultiplier,
		PurposeMultiplier:      l.PurposeMultiplier,
		NeighborhoodMultiplier: l.NeighborhoodMultiplier,
		PriceBeforeVAT:         l.PriceBeforeVAT,
		VATPercentage:          l.VATPercentage,
		VATAmount:              l.VATAmount,
		FinalPrice:             l.FinalPrice,
		Breakdown:              l.Breakdown,
		Status:                 transport.LeadStatus(l.Status),
		Notes:                  l.Notes,
		AssignedTo:             l.AssignedTo,
		AssignedToName:         l.AssignedToName,
		Source:                 l.Source,
		IPAddress:              l.IPAddress,
		UserAgent:              l.UserAgent,
		CreatedAt:              l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:              l.UpdatedAt.Format(time.RFC3339),
	}
	if l.FollowUpDate != nil {
		d := l.FollowUpDate.Format(transport.DateLayout)
		resp.FollowUpDate = &d
	}
	return resp
}
