// Package service records and lists audit entries.
package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"inspection_portal/internal/audit/repository"
	"inspection_portal/internal/audit/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"

	"github.com/google/uuid"
)

// Service appends to and reads the audit log.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new audit service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Record appends entry. It runs after the audited mutation has committed, so
// a failure is logged and never returned to the caller.
func (s *Service) Record(ctx context.Context, entry transport.Entry) {
	params := repository.InsertParams{
		ActorID:   entry.Actor.UserID,
		Action:    string(entry.Action),
		TableName: entry.TableName,
		RecordID:  entry.RecordID,
		IPAddress: entry.Actor.IPAddress,
		UserAgent: entry.Actor.UserAgent,
	}

	var err error
	if params.OldValues, err = marshalValues(entry.OldValues); err == nil {
		params.NewValues, err = marshalValues(entry.NewValues)
	}
	if err == nil {
		err = s.repo.Insert(context.WithoutCancel(ctx), params)
	}
	if err != nil {
		s.log.WithContext(ctx).AuditFailure(entry.TableName, entry.RecordID, string(entry.Action), err)
	}
}

// List returns audit entries, newest first.
func (s *Service) List(ctx context.Context, req transport.ListAuditLogsRequest) (transport.AuditLogListResponse, error) {
	page, pageSize := httpkit.NormalizePage(req.Page, req.PageSize)

	params := repository.ListParams{
		TableName: strings.TrimSpace(req.TableName),
		Action:    req.Action,
		RecordID:  strings.TrimSpace(req.RecordID),
		Offset:    httpkit.Offset(page, pageSize),
		Limit:     pageSize,
	}
	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			return transport.AuditLogListResponse{}, apperr.InvalidField("actorId", "must be a valid UUID")
		}
		params.ActorID = &actorID
	}

	logs, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.AuditLogListResponse{}, err
	}

	items := make([]transport.AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, toResponse(l))
	}
	return transport.AuditLogListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func marshalValues(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func toResponse(l repository.Log) transport.AuditLogResponse {
	resp := transport.AuditLogResponse{
		ID:        l.ID,
		ActorID:   l.ActorID,
		Action:    transport.Action(l.Action),
		TableName: l.TableName,
		RecordID:  l.RecordID,
		OldValues: l.OldValues,
		NewValues: l.NewValues,
		IPAddress: l.IPAddress,
		UserAgent: l.UserAgent,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if l.ActorEmail != nil {
		resp.ActorEmail = *l.ActorEmail
	}
	return resp
}
