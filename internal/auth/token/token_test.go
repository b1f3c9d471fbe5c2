package token

import (
	"testing"
	"time"

	"inspection_portal/platform/httpkit"

	"github.com/google/uuid"
)

func TestGenerateRandomToken_IsUniqueAndURLSafe(t *testing.T) {
	a, err := GenerateRandomToken(ResetTokenBytes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateRandomToken(ResetTokenBytes)
	if a == b {
		t.Fatal("expected distinct tokens")
	}
	if len(a) != 43 {
		t.Fatalf("expected 43 base64url chars for 32 bytes, got %d", len(a))
	}
}

func TestHashSHA256_IsStableHex(t *testing.T) {
	got := HashSHA256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestSignSession_ParsesBack(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	now := time.Now()

	raw, err := SignSession("secret", userID, sessionID, []string{"admin"}, now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := httpkit.ParseSessionToken(raw, "secret")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if claims.Subject != userID.String() || claims.SessionID != sessionID.String() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}

	if _, err := httpkit.ParseSessionToken(raw, "other-secret"); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestSignSession_ExpiredTokenRejected(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	raw, err := SignSession("secret", uuid.New(), uuid.New(), nil, past, past.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := httpkit.ParseSessionToken(raw, "secret"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
