package repository

import "testing"

func TestBuildListWhere_StatusAndSearch(t *testing.T) {
	status := "contacted"
	where, args := buildListWhere(ListParams{Status: &status, Search: "0501"})

	want := `1=1 AND status = $1 AND (phone ILIKE $2 ESCAPE '\' OR full_name ILIKE $2 ESCAPE '\' OR email ILIKE $2 ESCAPE '\')`
	if where != want {
		t.Fatalf("unexpected where clause:\n got: %s\nwant: %s", where, want)
	}
	if len(args) != 2 || args[1] != "%0501%" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestBuildListWhere_SearchOnly(t *testing.T) {
	where, args := buildListWhere(ListParams{Search: "sara_"})
	want := `1=1 AND (phone ILIKE $1 ESCAPE '\' OR full_name ILIKE $1 ESCAPE '\' OR email ILIKE $1 ESCAPE '\')`
	if where != want || len(args) != 1 || args[0] != `%sara\_%` {
		t.Fatalf("unexpected filter: %q %#v", where, args)
	}
}
