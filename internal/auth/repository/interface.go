package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenTypePasswordReset marks single-use password reset tokens.
const TokenTypePasswordReset = "PASSWORD_RESET"

// User is a staff account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a server-side login record referenced by the session token.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

// AuthRepository defines the data access contract for staff authentication.
type AuthRepository interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	ListActiveUsers(ctx context.Context) ([]User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error

	CreateSession(ctx context.Context, session Session) error
	SessionRole(ctx context.Context, sessionID uuid.UUID) (string, bool, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
	// RevokeUserSessions revokes every open session of the user except keep.
	RevokeUserSessions(ctx context.Context, userID uuid.UUID, keep *uuid.UUID) error

	CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error
	// ResetPassword consumes a reset token, sets the new password and revokes
	// all of the user's sessions in one transaction.
	ResetPassword(ctx context.Context, tokenHash, passwordHash string) (uuid.UUID, error)
}

var _ AuthRepository = (*Repository)(nil)
