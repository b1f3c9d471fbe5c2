package service

import (
	"context"
	"errors"
	"io"
	"testing"
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

	"github.com/google/uuid"
)

type fakeRepo struct {
	rows map[uuid.UUID]repository.Download
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uuid.UUID]repository.Download)}
}

func (f *fakeRepo) Create(_ context.Context, d repository.Download) (repository.Download, error) {
	d.ID = uuid.New()
	d.Status = string(transport.StatusNew)
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	f.rows[d.ID] = d
	return d, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Download, error) {
	d, ok := f.rows[id]
	if !ok {
		return repository.Download{}, apperr.NotFound("report download not found")
	}
	return d, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Download, int, error) {
	items := make([]repository.Download, 0, len(f.rows))
	for _, d := range f.rows {
		if params.Status != nil && d.Status != *params.Status {
			continue
		}
		items = append(items, d)
	}
	return items, len(items), nil
}

func (f *fakeRepo) UpdateWorkflow(_ context.Context, id uuid.UUID, status, notes *string) (repository.Download, error) {
	d, ok := f.rows[id]
	if !ok {
		return repository.Download{}, apperr.NotFound("report download not found")
	}
	if status != nil {
		d.Status = *status
	}
	if notes != nil {
		d.Notes = *notes
	}
	f.rows[id] = d
	return d, nil
}

type fakeStorage struct {
	err     error
	buckets []string
	keys    []string
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, bucket, fileKey, _ string) (*storage.PresignedURL, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.buckets = append(f.buckets, bucket)
	f.keys = append(f.keys, fileKey)
	return &storage.PresignedURL{
		URL:       "https://minio.local/" + bucket + "/" + fileKey + "?X-Amz-Signature=abc",
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeStorage) UploadFile(context.Context, string, string, string, io.Reader, int64) error {
	return nil
}

func (f *fakeStorage) EnsureBucketExists(context.Context, string) error { return nil }

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

type fakeAudit struct {
	entries []audittransport.Entry
}

func (f *fakeAudit) Record(_ context.Context, e audittransport.Entry) {
	f.entries = append(f.entries, e)
}

func testConfig(staticURL string) *config.Config {
	return &config.Config{
		MinioBucketReports: "inspection-reports",
		SampleReportKey:    "samples/sample-inspection-report.pdf",
		SampleReportURL:    staticURL,
	}
}

func newService(store storage.StorageService, cfg *config.Config) (*Service, *fakeRepo, *recordingBus, *fakeAudit) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	audit := &fakeAudit{}
	svc := New(repo, store, cfg, phone.NewNormalizer("SA"), bus, audit, logger.Discard())
	return svc, repo, bus, audit
}

var meta = httpkit.RequestMeta{IP: "10.0.0.1", UserAgent: "Mozilla/5.0", Referrer: "https://example.sa/pricing"}

func TestCapture_PresignsSampleReport(t *testing.T) {
	store := &fakeStorage{}
	svc, repo, bus, _ := newService(store, testConfig(""))

	resp, err := svc.Capture(context.Background(), transport.CaptureRequest{
		Phone:     "0501234567",
		FullName:  "  Sara <b>Ali</b> ",
		UTMSource: "google",
	}, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ExpiresAt == nil || resp.DownloadURL == "" {
		t.Fatalf("expected presigned url with expiry, got %+v", resp)
	}
	if len(store.keys) != 1 || store.keys[0] != "samples/sample-inspection-report.pdf" || store.buckets[0] != "inspection-reports" {
		t.Fatalf("unexpected presign calls: %v %v", store.buckets, store.keys)
	}

	row := repo.rows[resp.ID]
	if row.Phone != "+966501234567" {
		t.Fatalf("expected E.164 phone, got %s", row.Phone)
	}
	if row.FullName != "Sara Ali" {
		t.Fatalf("expected sanitized name, got %q", row.FullName)
	}
	if row.Source != defaultSource || row.Referrer != meta.Referrer || row.IPAddress != meta.IP || row.UTMSource != "google" {
		t.Fatalf("request metadata not captured: %+v", row)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	evt, ok := bus.published[0].(events.ReportDownloadRequested)
	if !ok || evt.DownloadID != resp.ID || evt.Phone != "+966501234567" {
		t.Fatalf("unexpected event: %#v", bus.published[0])
	}
}

func TestCapture_FallsBackToStaticURL(t *testing.T) {
	svc, _, _, _ := newService(nil, testConfig("https://cdn.example.sa/sample.pdf"))

	resp, err := svc.Capture(context.Background(), transport.CaptureRequest{Phone: "+966501234567"}, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DownloadURL != "https://cdn.example.sa/sample.pdf" || resp.ExpiresAt != nil {
		t.Fatalf("expected static url, got %+v", resp)
	}
}

func TestCapture_PresignFailureUsesStaticURL(t *testing.T) {
	svc, _, _, _ := newService(&fakeStorage{err: errors.New("minio down")}, testConfig("https://cdn.example.sa/sample.pdf"))

	resp, err := svc.Capture(context.Background(), transport.CaptureRequest{Phone: "0501234567"}, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DownloadURL != "https://cdn.example.sa/sample.pdf" {
		t.Fatalf("expected static fallback, got %s", resp.DownloadURL)
	}
}

func TestCapture_NoLinkAvailable(t *testing.T) {
	svc, repo, bus, _ := newService(nil, testConfig(""))

	_, err := svc.Capture(context.Background(), transport.CaptureRequest{Phone: "0501234567"}, meta)
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(repo.rows) != 0 || len(bus.published) != 0 {
		t.Fatal("expected nothing stored or published without a link")
	}
}

func TestCapture_InvalidPhone(t *testing.T) {
	svc, repo, _, _ := newService(nil, testConfig("https://cdn.example.sa/sample.pdf"))

	_, err := svc.Capture(context.Background(), transport.CaptureRequest{Phone: "12"}, meta)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected apperr.Error")
	}
	details := appErr.Details.([]apperr.FieldError)
	if details[0].Field != "phone" {
		t.Fatalf("expected phone field error, got %s", details[0].Field)
	}
	if len(repo.rows) != 0 {
		t.Fatal("expected no row for invalid phone")
	}
}

func TestUpdate_AuditsWorkflowChange(t *testing.T) {
	svc, repo, _, audit := newService(nil, testConfig("https://cdn.example.sa/sample.pdf"))
	created, _ := repo.Create(context.Background(), repository.Download{Phone: "+966501234567"})

	status := transport.StatusContacted
	notes := "called back"
	actor := audittransport.Actor{IPAddress: "10.0.0.2"}
	resp, err := svc.Update(context.Background(), actor, created.ID, transport.UpdateDownloadRequest{Status: &status, Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != transport.StatusContacted || resp.Notes != "called back" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.TableName != tableReportDownloads || entry.Action != audittransport.ActionUpdate || entry.RecordID != created.ID.String() {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if old := entry.OldValues.(workflowState); old.Status != transport.StatusNew {
		t.Fatalf("expected old status new, got %s", old.Status)
	}
}

func TestUpdate_RejectsEmptyAndUnknown(t *testing.T) {
	svc, _, _, audit := newService(nil, testConfig(""))

	_, err := svc.Update(context.Background(), audittransport.Actor{}, uuid.New(), transport.UpdateDownloadRequest{})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	status := transport.StatusRejected
	_, err = svc.Update(context.Background(), audittransport.Actor{}, uuid.New(), transport.UpdateDownloadRequest{Status: &status})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Fatal("expected no audit entries")
	}
}

func TestList_FiltersByStatus(t *testing.T) {
	svc, repo, _, _ := newService(nil, testConfig(""))
	first, _ := repo.Create(context.Background(), repository.Download{Phone: "+966501234567"})
	_, _ = repo.Create(context.Background(), repository.Download{Phone: "+966501234568"})
	contacted := string(transport.StatusContacted)
	_, _ = repo.UpdateWorkflow(context.Background(), first.ID, &contacted, nil)

	resp, err := svc.List(context.Background(), transport.ListDownloadsRequest{Status: "contacted"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].ID != first.ID {
		t.Fatalf("unexpected list: %+v", resp)
	}
	if resp.Page != 1 || resp.PageSize == 0 {
		t.Fatalf("expected normalized paging, got page=%d size=%d", resp.Page, resp.PageSize)
	}
}
