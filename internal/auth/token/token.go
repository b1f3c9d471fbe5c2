// Package token creates opaque reset tokens and signed session tokens.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"

	"inspection_portal/platform/httpkit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetTokenBytes is the entropy of a password reset token.
const ResetTokenBytes = 32

func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SignSession issues the HS256 session token stored in the session cookie.
func SignSession(secret string, userID, sessionID uuid.UUID, roles []string, issuedAt, expiresAt time.Time) (string, error) {
	claims := httpkit.SessionClaims{
		SessionID: sessionID.String(),
		Roles:     roles,
		Type:      httpkit.SessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
