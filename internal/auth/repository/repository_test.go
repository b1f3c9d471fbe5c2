package repository

import (
	"strings"
	"testing"
)

func TestSessionRoleQueryChecksRevocationExpiryAndUser(t *testing.T) {
	query := strings.ToLower(sessionRoleQuery)

	for _, fragment := range []string{
		"select u.role",
		"join users u on u.id = s.user_id",
		"s.id = $1",
		"s.revoked_at is null",
		"s.expires_at > now()",
		"u.is_active = true",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected session query fragment %q", fragment)
		}
	}
}

func TestConsumeResetTokenQueryIsSingleUse(t *testing.T) {
	query := strings.ToLower(consumeResetTokenQuery)

	for _, fragment := range []string{"used_at = now()", "used_at is null", "expires_at > now()", "type = $2"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected reset token query fragment %q", fragment)
		}
	}
}

func TestRevokeUserSessionsQueryCanKeepCurrentSession(t *testing.T) {
	query := strings.ToLower(revokeUserSessionsQuery)
	if !strings.Contains(query, "id <> $2") || !strings.Contains(query, "$2::uuid is null") {
		t.Fatal("expected optional session exclusion")
	}
}

func TestListActiveUsersQueryFiltersInactive(t *testing.T) {
	if !strings.Contains(strings.ToLower(listActiveUsersQuery), "where is_active = true") {
		t.Fatal("expected active-only filter")
	}
}
