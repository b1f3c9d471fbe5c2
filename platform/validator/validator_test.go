package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

type sampleRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Multiplier decimal.Decimal `json:"multiplier" validate:"gt=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=new contacted"`
}

func TestFields_UsesJSONNames(t *testing.T) {
	val := New()
	err := val.Struct(sampleRequest{Email: "nope", Multiplier: decimal.Zero, Status: "lost"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := Fields(err)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Field] = f.Message
	}

	for _, name := range []string{"email", "multiplier", "status"} {
		if _, ok := got[name]; !ok {
			t.Fatalf("expected field %q in %#v", name, fields)
		}
	}
}

func TestStruct_AcceptsPositiveDecimal(t *testing.T) {
	val := New()
	req := sampleRequest{Email: "a@b.sa", Multiplier: decimal.RequireFromString("1.1")}

	if err := val.Struct(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFields_NonValidationErrorIsNil(t *testing.T) {
	if Fields(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
