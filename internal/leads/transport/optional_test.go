package transport

import (
	"encoding/json"
	"testing"
)

func TestUpdateLeadRequest_DistinguishesNullFromAbsent(t *testing.T) {
	var absent UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"notes":"x"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.AssignedTo.Set || absent.FollowUpDate.Set {
		t.Fatal("absent fields must not be marked set")
	}

	var cleared UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"assignedTo":null,"followUpDate":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cleared.AssignedTo.Set || cleared.AssignedTo.Value != nil {
		t.Fatalf("expected explicit null assignee, got %#v", cleared.AssignedTo)
	}
	if !cleared.FollowUpDate.Set || cleared.FollowUpDate.Value != nil {
		t.Fatalf("expected explicit null follow-up, got %#v", cleared.FollowUpDate)
	}
}

func TestOptionalDate_ParsesCalendarDate(t *testing.T) {
	var req UpdateLeadRequest
	if err := json.Unmarshal([]byte(`{"followUpDate":"2025-06-30"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.FollowUpDate.Value == nil || req.FollowUpDate.Value.Format(DateLayout) != "2025-06-30" {
		t.Fatalf("unexpected date: %#v", req.FollowUpDate)
	}

	if err := json.Unmarshal([]byte(`{"followUpDate":"30/06/2025"}`), &req); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
