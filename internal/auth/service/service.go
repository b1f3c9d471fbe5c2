// Package service implements staff login, sessions and password management.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"inspection_portal/internal/auth/password"
	"inspection_portal/internal/auth/repository"
	"inspection_portal/internal/auth/token"
	"inspection_portal/internal/auth/transport"
	"inspection_portal/internal/events"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/config"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgAccountDisabled    = "account is disabled"
	msgInvalidResetToken  = "reset token is invalid or expired"
	msgWrongPassword      = "current password is incorrect"
)

// Service provides business logic for staff authentication.
type Service struct {
	repo     repository.AuthRepository
	cfg      config.AuthServiceConfig
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new auth service.
func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, eventBus: eventBus, log: log, now: time.Now}
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, plainPassword string, meta httpkit.RequestMeta) (transport.LoginResponse, error) {
	email = normalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("login", email, false, "unknown email")
			return transport.LoginResponse{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return transport.LoginResponse{}, err
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return transport.LoginResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsActive {
		s.log.AuthEvent("login", email, false, "inactive account")
		return transport.LoginResponse{}, apperr.Forbidden(msgAccountDisabled)
	}

	issuedAt := s.now()
	session := repository.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: issuedAt.Add(s.cfg.GetSessionTTL()),
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return transport.LoginResponse{}, err
	}

	signed, err := token.SignSession(s.cfg.GetSessionSecret(), user.ID, session.ID, []string{user.Role}, issuedAt, session.ExpiresAt)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "sign session", err)
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.WithContext(ctx).Warn("failed to record last login", "user_id", user.ID.String(), "error", err)
	}
	s.log.AuthEvent("login", email, true, "")

	return transport.LoginResponse{
		Token:     signed,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(user),
	}, nil
}

// Logout revokes the session behind rawToken. Unparseable tokens are ignored.
func (s *Service) Logout(ctx context.Context, rawToken string) {
	if rawToken == "" {
		return
	}
	claims, err := httpkit.ParseSessionToken(rawToken, s.cfg.GetSessionSecret())
	if err != nil {
		return
	}
	if err := s.repo.RevokeSession(ctx, uuid.MustParse(claims.SessionID)); err != nil {
		s.log.WithContext(ctx).Warn("failed to revoke session", "error", err)
	}
}

// Me returns the profile of the signed-in user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// ListUsers returns active staff for the assignee picker.
func (s *Service) ListUsers(ctx context.Context) ([]transport.UserSummary, error) {
	users, err := s.repo.ListActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.UserSummary, len(users))
	for i, u := range users {
		out[i] = transport.UserSummary{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
	}
	return out, nil
}

// ChangePassword replaces the password and revokes every other session of
// the user.
func (s *Service) ChangePassword(ctx context.Context, userID, sessionID uuid.UUID, current, next string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := password.Compare(user.PasswordHash, current); err != nil {
		return apperr.InvalidField("currentPassword", msgWrongPassword)
	}

	hash, err := password.Hash(next)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	keep := &sessionID
	if sessionID == uuid.Nil {
		keep = nil
	}
	if err := s.repo.RevokeUserSessions(ctx, userID, keep); err != nil {
		return err
	}
	s.log.AuthEvent("change_password", user.Email, true, "")
	return nil
}

// ForgotPassword issues a reset token for active accounts. The outcome is
// the same whether or not the email exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("forgot_password", email, false, "unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive {
		s.log.AuthEvent("forgot_password", email, false, "inactive account")
		return nil
	}

	resetToken, err := token.GenerateRandomToken(token.ResetTokenBytes)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "generate reset token", err)
	}

	expiresAt := s.now().Add(s.cfg.GetResetTokenTTL())
	if err := s.repo.CreateUserToken(ctx, user.ID, token.HashSHA256(resetToken), repository.TokenTypePasswordReset, expiresAt); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, events.PasswordResetRequested{
		BaseEvent:  events.NewBaseEvent(),
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		ResetToken: resetToken,
	})
	s.log.AuthEvent("forgot_password", email, true, "")
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash, err := password.Hash(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "hash password", err)
	}

	userID, err := s.repo.ResetPassword(ctx, token.HashSHA256(strings.TrimSpace(rawToken)), hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return apperr.BadRequest(msgInvalidResetToken)
	}
	if err != nil {
		return err
	}

	s.log.Info("password reset", "user_id", userID.String())
	return nil
}

func toUserResponse(u repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
