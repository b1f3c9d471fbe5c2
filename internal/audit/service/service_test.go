package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"inspection_portal/internal/audit/repository"
	"inspection_portal/internal/audit/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	inserted  []repository.InsertParams
	insertErr error
	listed    repository.ListParams
}

func (f *fakeRepo) Insert(_ context.Context, params repository.InsertParams) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, params)
	return nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Log, int, error) {
	f.listed = params
	return []repository.Log{{ID: uuid.New(), Action: "update", TableName: "cities"}}, 41, nil
}

func TestRecord_MarshalsValues(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.Discard())
	actor := uuid.New()

	svc.Record(context.Background(), transport.Entry{
		Actor:     transport.Actor{UserID: &actor, IPAddress: "10.0.0.1"},
		Action:    transport.ActionUpdate,
		TableName: "cities",
		RecordID:  "abc",
		OldValues: map[string]any{"name": "Riyad"},
		NewValues: map[string]any{"name": "Riyadh"},
	})

	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	got := repo.inserted[0]
	var newValues map[string]string
	if err := json.Unmarshal(got.NewValues, &newValues); err != nil || newValues["name"] != "Riyadh" {
		t.Fatalf("unexpected new values %s (%v)", got.NewValues, err)
	}
	if got.Action != "update" || *got.ActorID != actor || got.IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected insert params %+v", got)
	}
}

func TestRecord_CreateLeavesOldValuesNull(t *testing.T) {
	repo := &fakeRepo{}
	New(repo, logger.Discard()).Record(context.Background(), transport.Entry{
		Action:    transport.ActionCreate,
		TableName: "packages",
		RecordID:  "p1",
		NewValues: map[string]any{"name": "basic"},
	})

	if repo.inserted[0].OldValues != nil {
		t.Fatalf("expected nil old values, got %s", repo.inserted[0].OldValues)
	}
}

func TestRecord_SwallowsInsertFailure(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("db down")}
	svc := New(repo, logger.Discard())

	// Must not panic or surface the error.
	svc.Record(context.Background(), transport.Entry{Action: transport.ActionDelete, TableName: "cities", RecordID: "x"})
}

func TestList_NormalizesPaginationAndActor(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.Discard())
	actor := uuid.New()

	res, err := svc.List(context.Background(), transport.ListAuditLogsRequest{
		ActorID:  actor.String(),
		Page:     3,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || res.Total != 41 || res.Page != 3 || res.PageSize != 10 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if repo.listed.Offset != 20 || repo.listed.Limit != 10 || *repo.listed.ActorID != actor {
		t.Fatalf("unexpected list params %+v", repo.listed)
	}
}

func TestList_RejectsMalformedActor(t *testing.T) {
	svc := New(&fakeRepo{}, logger.Discard())

	_, err := svc.List(context.Background(), transport.ListAuditLogsRequest{ActorID: "nope"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
