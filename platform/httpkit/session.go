package httpkit

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"inspection_portal/platform/config"
	"inspection_portal/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenType is the "type" claim carried by session tokens.
const SessionTokenType = "session"

const (
	errMissingSession = "missing session"
	errInvalidSession = "invalid session"
)

// ErrInvalidSessionToken is returned for any token that fails verification.
var ErrInvalidSessionToken = errors.New(errInvalidSession)

// SessionClaims is the JWT payload stored in the session cookie.
type SessionClaims struct {
	SessionID string   `json:"sid"`
	Roles     []string `json:"roles"`
	Type      string   `json:"type"`
	jwt.RegisteredClaims
}

// SessionChecker resolves a session id to the current role of its user.
// ok is false when the session is revoked or expired, or the user is
// deactivated.
type SessionChecker interface {
	SessionRole(ctx context.Context, sessionID uuid.UUID) (role string, ok bool, err error)
}

// ParseSessionToken verifies an HS256 session token and returns its claims.
func ParseSessionToken(raw, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSessionToken
	}
	if claims.Type != SessionTokenType {
		return nil, ErrInvalidSessionToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidSessionToken
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, ErrInvalidSessionToken
	}
	return claims, nil
}

// SessionToken reads the raw session token from the cookie, falling back to
// an Authorization: Bearer header for API clients.
func SessionToken(c *gin.Context, cookieName string) (string, bool) {
	if value, err := c.Cookie(cookieName); err == nil && value != "" {
		return value, true
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

// SessionRequired validates the session token and its server-side record.
func SessionRequired(cfg config.SessionConfig, checker SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := SessionToken(c, cfg.GetSessionCookieName())
		if !ok {
			Abort(c, http.StatusUnauthorized, errMissingSession)
			return
		}

		claims, err := ParseSessionToken(raw, cfg.GetSessionSecret())
		if err != nil {
			Abort(c, http.StatusUnauthorized, errInvalidSession)
			return
		}

		userID := uuid.MustParse(claims.Subject)
		sessionID := uuid.MustParse(claims.SessionID)

		role, active, err := checker.SessionRole(c.Request.Context(), sessionID)
		if err != nil {
			_ = c.Error(err)
			Abort(c, http.StatusInternalServerError, msgInternalError)
			return
		}
		if !active {
			Abort(c, http.StatusUnauthorized, errInvalidSession)
			return
		}

		c.Set(ContextUserIDKey, userID)
		// The role claim is only a hint for clients; the stored role wins.
		c.Set(ContextRolesKey, []string{role})
		c.Set(ContextSessionIDKey, sessionID)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole returns middleware that checks if the user has the specified role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).HasRole(role) {
			Abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}
