// Package service captures sample-report requests and serves the staff
// follow-up workflow for them.
package service

import (
	"context"
	"path"
	"strings"
	"time"

	"inspection_portal/internal/adapters/storage"
	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/events"
	"inspection_portal/internal/reports/repository"
	"inspection_portal/internal/reports/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/config"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"
	"inspection_portal/platform/phone"
	"inspection_portal/platform/sanitize"

	"github.com/google/uuid"
)

const (
	tableReportDownloads = "report_downloads"
	defaultSource        = "website"
	maxMetaLength        = 500
)

// AuditRecorder appends workflow changes to the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, entry audittransport.Entry)
}

// Service provides business logic for report downloads.
type Service struct {
	repo     repository.Repository
	storage  storage.StorageService
	cfg      config.ReportConfig
	phones   *phone.Normalizer
	eventBus events.Bus
	audit    AuditRecorder
	log      *logger.Logger
}

// New creates a report download service. storage may be nil, in which case
// the configured static sample URL is handed out.
func New(
	repo repository.Repository,
	store storage.StorageService,
	cfg config.ReportConfig,
	phones *phone.Normalizer,
	eventBus events.Bus,
	audit AuditRecorder,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		storage:  store,
		cfg:      cfg,
		phones:   phones,
		eventBus: eventBus,
		audit:    audit,
		log:      log,
	}
}

// Capture records a download request and returns the sample report link.
func (s *Service) Capture(ctx context.Context, req transport.CaptureRequest, meta httpkit.RequestMeta) (transport.CaptureResponse, error) {
	normalized, err := s.phones.Normalize(req.Phone)
	if err != nil {
		return transport.CaptureResponse{}, apperr.InvalidField("phone", "invalid phone number")
	}

	source := sanitize.Text(req.Source)
	if source == "" {
		source = defaultSource
	}

	url, expiresAt, err := s.downloadURL(ctx)
	if err != nil {
		return transport.CaptureResponse{}, err
	}

	download, err := s.repo.Create(ctx, repository.Download{
		Phone:       normalized,
		FullName:    sanitize.Text(req.FullName),
		Email:       sanitize.Email(req.Email),
		Source:      source,
		Referrer:    truncate(meta.Referrer, maxMetaLength),
		UTMSource:   sanitize.Text(req.UTMSource),
		UTMMedium:   sanitize.Text(req.UTMMedium),
		UTMCampaign: sanitize.Text(req.UTMCampaign),
		IPAddress:   meta.IP,
		UserAgent:   truncate(meta.UserAgent, maxMetaLength),
	})
	if err != nil {
		return transport.CaptureResponse{}, err
	}

	s.eventBus.Publish(ctx, events.ReportDownloadRequested{
		BaseEvent:  events.NewBaseEvent(),
		DownloadID: download.ID,
		Phone:      download.Phone,
		FullName:   download.FullName,
		Email:      download.Email,
		Source:     download.Source,
	})

	return transport.CaptureResponse{ID: download.ID, DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// downloadURL presigns the sample report when object storage is wired and
// falls back to the static URL when it is not or presigning fails.
func (s *Service) downloadURL(ctx context.Context) (string, *time.Time, error) {
	key := s.cfg.GetSampleReportKey()
	if s.storage != nil && key != "" {
		presigned, err := s.storage.GenerateDownloadURL(ctx, s.cfg.GetMinioBucketReports(), key, path.Base(key))
		if err == nil {
			return presigned.URL, &presigned.ExpiresAt, nil
		}
		s.log.WithContext(ctx).Error("sample report presign failed", "key", key, "error", err)
	}

	if static := s.cfg.GetSampleReportURL(); static != "" {
		return static, nil, nil
	}
	return "", nil, apperr.Internal("sample report is not available")
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.DownloadResponse, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.DownloadResponse{}, err
	}
	return toResponse(d), nil
}

// List retrieves report downloads, newest first.
func (s *Service) List(ctx context.Context, req transport.ListDownloadsRequest) (transport.DownloadListResponse, error) {
	page, pageSize := httpkit.NormalizePage(req.Page, req.PageSize)
	params := repository.ListParams{
		Search: req.Search,
		Offset: httpkit.Offset(page, pageSize),
		Limit:  pageSize,
	}
	if req.Status != "" {
		status := req.Status
		params.Status = &status
	}

	downloads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.DownloadListResponse{}, err
	}

	items := make([]transport.DownloadResponse, len(downloads))
	for i, d := range downloads {
		items[i] = toResponse(d)
	}
	return transport.DownloadListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

type workflowState struct {
	Status transport.DownloadStatus `json:"status"`
	Notes  string                   `json:"notes"`
}

// Update changes the follow-up status or notes of a download.
func (s *Service) Update(ctx context.Context, actor audittransport.Actor, id uuid.UUID, req transport.UpdateDownloadRequest) (transport.DownloadResponse, error) {
	if req.Status == nil && req.Notes == nil {
		return transport.DownloadResponse{}, apperr.BadRequest("no fields to update")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.DownloadResponse{}, err
	}

	var status *string
	if req.Status != nil {
		v := string(*req.Status)
		status = &v
	}
	updated, err := s.repo.UpdateWorkflow(ctx, id, status, sanitize.TextPtr(req.Notes))
	if err != nil {
		return transport.DownloadResponse{}, err
	}

	resp := toResponse(updated)
	s.audit.Record(ctx, audittransport.Entry{
		Actor:     actor,
		Action:    audittransport.ActionUpdate,
		TableName: tableReportDownloads,
		RecordID:  id.String(),
		OldValues: workflowState{Status: transport.DownloadStatus(current.Status), Notes: current.Notes},
		NewValues: workflowState{Status: resp.Status, Notes: resp.Notes},
	})
	return resp, nil
}

func toResponse(d repository.Download) transport.DownloadResponse {
	return transport.DownloadResponse{
		ID:          d.ID,
		Phone:       d.Phone,
		FullName:    d.FullName,
		Email:       d.Email,
		Source:      d.Source,
		Referrer:    d.Referrer,
		UTMSource:   d.UTMSource,
		UTMMedium:   d.UTMMedium,
		UTMCampaign: d.UTMCampaign,
		IPAddress:   d.IPAddress,
		UserAgent:   d.UserAgent,
		Status:      transport.DownloadStatus(d.Status),
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
