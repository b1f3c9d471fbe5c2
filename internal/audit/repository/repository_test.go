package repository

import (
	"testing"

	"github.com/google/uuid"
)

func TestBuildListFilter_CombinesFiltersWithAnd(t *testing.T) {
	actor := uuid.New()
	where, args := buildListFilter(ListParams{TableName: "packages", Action: "update", ActorID: &actor})

	want := "1=1 AND a.table_name = $1 AND a.action = $2 AND a.actor_id = $3"
	if where != want {
		t.Fatalf("expected %q, got %q", want, where)
	}
	if len(args) != 3 || args[2] != actor {
		t.Fatalf("unexpected args %#v", args)
	}
}

func TestBuildListFilter_EmptyMatchesAll(t *testing.T) {
	where, args := buildListFilter(ListParams{})
	if where != "1=1" || len(args) != 0 {
		t.Fatalf("expected unfiltered clause, got %q %#v", where, args)
	}
}
