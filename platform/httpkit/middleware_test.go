package httpkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inspection_portal/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

type testSessionConfig struct{}

func (testSessionConfig) GetSessionSecret() string                { return testSecret }
func (testSessionConfig) GetSessionTTL() time.Duration            { return time.Hour }
func (testSessionConfig) GetSessionCookieName() string            { return "sess" }
func (testSessionConfig) GetSessionCookieDomain() string          { return "" }
func (testSessionConfig) GetSessionCookiePath() string            { return "/" }
func (testSessionConfig) GetSessionCookieSecure() bool            { return false }
func (testSessionConfig) GetSessionCookieSameSite() http.SameSite { return http.SameSiteLaxMode }

// fakeChecker maps live session ids to the stored role of their user.
type fakeChecker struct {
	roles map[uuid.UUID]string
}

func (f fakeChecker) SessionRole(_ context.Context, id uuid.UUID) (string, bool, error) {
	role, ok := f.roles[id]
	return role, ok, nil
}

func signTestToken(t *testing.T, userID, sessionID uuid.UUID, roles []string, tokenType string, ttl time.Duration) string {
	t.Helper()
	claims := SessionClaims{
		SessionID: sessionID.String(),
		Roles:     roles,
		Type:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func newSessionRouter(checker SessionChecker, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{SessionRequired(testSessionConfig{}, checker)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id := GetIdentity(c)
		OK(c, gin.H{"userId": id.UserID().String()})
	})
	r.GET("/me", handlers...)
	return r
}

func TestSessionRequired_AcceptsCookie(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	router := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{sessionID: "sales"}})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: signTestToken(t, userID, sessionID, []string{"sales"}, SessionTokenType, time.Hour)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionRequired_RejectsRevokedSession(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	router := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{}})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, userID, sessionID, nil, SessionTokenType, time.Hour))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionRequired_RejectsExpiredAndWrongType(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	router := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{sessionID: "sales"}})

	for _, raw := range []string{
		signTestToken(t, userID, sessionID, nil, SessionTokenType, -time.Minute),
		signTestToken(t, userID, sessionID, nil, "reset", time.Hour),
		"garbage",
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "sess", Value: raw})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	}
}

func TestSessionRequired_MissingToken(t *testing.T) {
	router := newSessionRouter(fakeChecker{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRole_ForbidsOtherRoles(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	router := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{sessionID: "sales"}}, RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: signTestToken(t, userID, sessionID, []string{"sales"}, SessionTokenType, time.Hour)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_UsesStoredRoleOverTokenClaim(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	// Token minted while the user was an admin; the user has since been demoted.
	raw := signTestToken(t, userID, sessionID, []string{"admin"}, SessionTokenType, time.Hour)

	demoted := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{sessionID: "sales"}}, RequireRole("admin"))
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: raw})
	rec := httptest.NewRecorder()
	demoted.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for demoted user, got %d", rec.Code)
	}

	promoted := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{sessionID: "admin"}}, RequireRole("admin"))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: signTestToken(t, userID, sessionID, []string{"sales"}, SessionTokenType, time.Hour)})
	rec = httptest.NewRecorder()
	promoted.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for promoted user, got %d", rec.Code)
	}
}

func TestSessionRequired_RejectsDeactivatedUser(t *testing.T) {
	userID, sessionID := uuid.New(), uuid.New()
	// A deactivated user's sessions resolve to no row.
	router := newSessionRouter(fakeChecker{roles: map[uuid.UUID]string{}})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sess", Value: signTestToken(t, userID, sessionID, []string{"admin"}, SessionTokenType, time.Hour)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, logger.Discard())
	r := gin.New()
	r.GET("/x", limiter.RateLimit(), func(c *gin.Context) { OK(c, nil) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence: %v", codes)
	}
}

func TestRequestID_EchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { OK(c, c.GetString(ContextRequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Discard()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
