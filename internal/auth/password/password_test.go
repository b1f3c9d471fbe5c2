package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("Sup3r$ecret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "Sup3r$ecret" {
		t.Fatal("expected hashed password")
	}
	if err := Compare(hash, "Sup3r$ecret"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := Compare(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
}
