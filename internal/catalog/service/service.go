// Package service implements catalog business logic: admin CRUD over the
// pricing configuration and the cached public snapshot.
package service

import (
	"context"
	"strings"
	"time"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/cache"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"

	"github.com/google/uuid"
)

const (
	snapshotCacheKey      = "catalog:snapshot"
	snapshotGenerationKey = "catalog:snapshot:gen"
)

// AuditRecorder appends admin mutations to the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, entry audittransport.Entry)
}

// Service provides business logic for catalog.
type Service struct {
	repo     repository.Repository
	cache    cache.Cache
	cacheTTL time.Duration
	audit    AuditRecorder
	log      *logger.Logger
}

// New creates a new catalog service. A nil snapshotCache disables caching.
func New(repo repository.Repository, snapshotCache cache.Cache, cacheTTL time.Duration, audit AuditRecorder, log *logger.Logger) *Service {
	if snapshotCache == nil {
		snapshotCache = cache.Noop{}
	}
	return &Service{repo: repo, cache: snapshotCache, cacheTTL: cacheTTL, audit: audit, log: log}
}

// mutated invalidates the cached snapshot and records the audit entry. It
// runs only after the write has committed.
func (s *Service) mutated(ctx context.Context, actor audittransport.Actor, action audittransport.Action, table string, id uuid.UUID, oldValues, newValues any) {
	s.invalidateSnapshot(ctx)
	s.audit.Record(ctx, audittransport.Entry{
		Actor:     actor,
		Action:    action,
		TableName: table,
		RecordID:  id.String(),
		OldValues: oldValues,
		NewValues: newValues,
	})
}

// invalidateSnapshot moves readers to a new generation and drops the
// snapshot cached under the previous one.
func (s *Service) invalidateSnapshot(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	gen, err := s.cache.Incr(ctx, snapshotGenerationKey)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to invalidate config snapshot", "error", err)
		return
	}
	if err := s.cache.Delete(ctx, snapshotKey(gen-1)); err != nil {
		s.log.WithContext(ctx).Warn("failed to drop previous config snapshot", "error", err)
	}
}

func listParams(req transport.ListRequest) (repository.ListParams, int, int, error) {
	page, pageSize := httpkit.NormalizePage(req.Page, req.PageSize)
	params := repository.ListParams{
		Search:          strings.TrimSpace(req.Search),
		IncludeInactive: req.IncludeInactive,
		Offset:          httpkit.Offset(page, pageSize),
		Limit:           pageSize,
	}
	if req.CityID != "" {
		id, err := uuid.Parse(req.CityID)
		if err != nil {
			return repository.ListParams{}, 0, 0, apperr.InvalidField("cityId", "must be a valid UUID")
		}
		params.CityID = &id
	}
	return params, page, pageSize, nil
}

func listResponse[M any, R any](items []M, total, page, pageSize int, convert func(M) R) transport.ListResponse[R] {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, convert(item))
	}
	return transport.ListResponse[R]{Items: out, Total: total, Page: page, PageSize: pageSize}
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
