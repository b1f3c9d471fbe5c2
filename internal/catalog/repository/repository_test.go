package repository

import (
	"testing"

	"github.com/google/uuid"
)

func TestFilter_ActiveOnlyByDefault(t *testing.T) {
	where, args := filter("c", ListParams{})
	if where != "1=1 AND c.is_active = true" || len(args) != 0 {
		t.Fatalf("unexpected filter %q %#v", where, args)
	}
}

func TestFilter_SearchSpansColumns(t *testing.T) {
	city := uuid.New()
	where, args := filter("n", ListParams{IncludeInactive: true, CityID: &city, Search: " olaya "}, "name", "code")

	want := `1=1 AND n.city_id = $1 AND (n.name ILIKE $2 ESCAPE '\' OR n.code ILIKE $2 ESCAPE '\')`
	if where != want {
		t.Fatalf("expected %q, got %q", want, where)
	}
	if len(args) != 2 || args[1] != "%olaya%" {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestPageArgs_NumbersAfterFilterArgs(t *testing.T) {
	args, clause := pageArgs([]interface{}{"x"}, ListParams{Limit: 20, Offset: 40})
	if clause != "LIMIT $2 OFFSET $3" || len(args) != 3 || args[1] != 20 || args[2] != 40 {
		t.Fatalf("unexpected page args %q %#v", clause, args)
	}
}

func TestMultiplierKind_Table(t *testing.T) {
	if PropertyAge.Table() != "property_age_multipliers" || InspectionPurpose.Table() != "inspection_purpose_multipliers" {
		t.Fatal("unexpected multiplier tables")
	}
}
