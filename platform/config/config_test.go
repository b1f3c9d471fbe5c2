package config

import (
	"net/http"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/inspection")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("MINIO_ENDPOINT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected 12h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.SessionCookieSecure {
		t.Fatal("expected insecure cookie outside production")
	}
	if cfg.EmailEnabled {
		t.Fatal("expected email disabled without SMTP_HOST")
	}
	if cfg.PhoneDefaultRegion != "SA" {
		t.Fatalf("expected SA default region, got %s", cfg.PhoneDefaultRegion)
	}
	if cfg.SessionCookieSameSite != http.SameSiteLaxMode {
		t.Fatalf("expected Lax same-site, got %v", cfg.SessionCookieSameSite)
	}
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when SESSION_SECRET is empty")
	}
}

func TestLoad_WildcardOriginRejectsCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origins with credentials")
	}
}

func TestLoad_ProductionCookieIsSecure(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_COOKIE_SECURE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.SessionCookieSecure {
		t.Fatal("expected secure cookie in production")
	}
}

func TestSplitCSV_TrimsAndDropsEmpty(t *testing.T) {
	got := splitCSV(" a@x.sa, ,b@x.sa ")
	if len(got) != 2 || got[0] != "a@x.sa" || got[1] != "b@x.sa" {
		t.Fatalf("unexpected split result: %#v", got)
	}
}
