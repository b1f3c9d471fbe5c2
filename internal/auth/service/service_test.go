package service

import (
	"context"
	"testing"
	"time"

	"inspection_portal/internal/auth/password"
	"inspection_portal/internal/auth/repository"
	"inspection_portal/internal/auth/token"
	"inspection_portal/internal/events"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/config"
	"inspection_portal/platform/httpkit"
	"inspection_portal/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	users    map[uuid.UUID]repository.User
	sessions map[uuid.UUID]repository.Session
	revoked  map[uuid.UUID]bool
	tokens   map[string]fakeToken
}

type fakeToken struct {
	userID    uuid.UUID
	expiresAt time.Time
	used      bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[uuid.UUID]repository.User),
		sessions: make(map[uuid.UUID]repository.Session),
		revoked:  make(map[uuid.UUID]bool),
		tokens:   make(map[string]fakeToken),
	}
}

func (f *fakeRepo) addUser(t *testing.T, email, plain string, active bool) repository.User {
	t.Helper()
	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := repository.User{ID: uuid.New(), Email: email, PasswordHash: hash, FullName: "Staff", Role: "sales", IsActive: active}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFound("user not found")
}

func (f *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeRepo) ListActiveUsers(context.Context) ([]repository.User, error) {
	out := []repository.User{}
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u := f.users[id]
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeRepo) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	u := f.users[id]
	now := time.Now()
	u.LastLoginAt = &now
	f.users[id] = u
	return nil
}

func (f *fakeRepo) CreateSession(_ context.Context, s repository.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeRepo) SessionRole(_ context.Context, id uuid.UUID) (string, bool, error) {
	s, ok := f.sessions[id]
	if !ok || f.revoked[id] || !s.ExpiresAt.After(time.Now()) {
		return "", false, nil
	}
	u, ok := f.users[s.UserID]
	if !ok || !u.IsActive {
		return "", false, nil
	}
	return u.Role, true, nil
}

func (f *fakeRepo) RevokeSession(_ context.Context, id uuid.UUID) error {
	f.revoked[id] = true
	return nil
}

func (f *fakeRepo) RevokeUserSessions(_ context.Context, userID uuid.UUID, keep *uuid.UUID) error {
	for id, s := range f.sessions {
		if s.UserID == userID && (keep == nil || *keep != id) {
			f.revoked[id] = true
		}
	}
	return nil
}

func (f *fakeRepo) CreateUserToken(_ context.Context, userID uuid.UUID, hash, _ string, expiresAt time.Time) error {
	f.tokens[hash] = fakeToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeRepo) ResetPassword(ctx context.Context, hash, passwordHash string) (uuid.UUID, error) {
	tok, ok := f.tokens[hash]
	if !ok || tok.used || time.Now().After(tok.expiresAt) {
		return uuid.Nil, repository.ErrTokenInvalid
	}
	tok.used = true
	f.tokens[hash] = tok
	_ = f.UpdatePassword(ctx, tok.userID, passwordHash)
	_ = f.RevokeUserSessions(ctx, tok.userID, nil)
	return tok.userID, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func newTestService() (*Service, *fakeRepo, *recordingBus) {
	cfg := &config.Config{SessionSecret: "test-secret", SessionTTL: time.Hour, ResetTokenTTL: 30 * time.Minute}
	repo := newFakeRepo()
	bus := &recordingBus{}
	return New(repo, cfg, bus, logger.Discard()), repo, bus
}

var meta = httpkit.RequestMeta{IP: "10.0.0.1", UserAgent: "test"}

func TestLogin_IssuesSessionToken(t *testing.T) {
	svc, repo, _ := newTestService()
	user := repo.addUser(t, "sales@example.sa", "Passw0rd", true)

	resp, err := svc.Login(context.Background(), "  Sales@Example.sa ", "Passw0rd", meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := httpkit.ParseSessionToken(resp.Token, "test-secret")
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if claims.Subject != user.ID.String() || len(claims.Roles) != 1 || claims.Roles[0] != "sales" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	session, ok := repo.sessions[uuid.MustParse(claims.SessionID)]
	if !ok || session.IPAddress != meta.IP {
		t.Fatalf("expected session row with request metadata, got %+v", session)
	}
	if repo.users[user.ID].LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLogin_RejectsBadCredentialsUniformly(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.addUser(t, "sales@example.sa", "Passw0rd", true)

	_, errWrong := svc.Login(context.Background(), "sales@example.sa", "nope", meta)
	_, errUnknown := svc.Login(context.Background(), "ghost@example.sa", "Passw0rd", meta)

	for _, err := range []error{errWrong, errUnknown} {
		if !apperr.Is(err, apperr.KindUnauthorized) || err.Error() != msgInvalidCredentials {
			t.Fatalf("expected uniform unauthorized error, got %v", err)
		}
	}
	if len(repo.sessions) != 0 {
		t.Fatal("expected no session")
	}
}

func TestLogin_RejectsInactiveUser(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.addUser(t, "old@example.sa", "Passw0rd", false)

	_, err := svc.Login(context.Background(), "old@example.sa", "Passw0rd", meta)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.addUser(t, "sales@example.sa", "Passw0rd", true)
	resp, _ := svc.Login(context.Background(), "sales@example.sa", "Passw0rd", meta)
	claims, _ := httpkit.ParseSessionToken(resp.Token, "test-secret")

	svc.Logout(context.Background(), resp.Token)
	svc.Logout(context.Background(), "garbage")

	if _, active, _ := repo.SessionRole(context.Background(), uuid.MustParse(claims.SessionID)); active {
		t.Fatal("expected session revoked")
	}
}

func TestChangePassword_KeepsCurrentSessionOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	user := repo.addUser(t, "sales@example.sa", "Passw0rd", true)
	first, _ := svc.Login(context.Background(), "sales@example.sa", "Passw0rd", meta)
	second, _ := svc.Login(context.Background(), "sales@example.sa", "Passw0rd", meta)
	firstClaims, _ := httpkit.ParseSessionToken(first.Token, "test-secret")
	secondClaims, _ := httpkit.ParseSessionToken(second.Token, "test-secret")
	current := uuid.MustParse(secondClaims.SessionID)

	if err := svc.ChangePassword(context.Background(), user.ID, current, "Passw0rd", "N3wPassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, active, _ := repo.SessionRole(context.Background(), current); !active {
		t.Fatal("expected current session to stay active")
	}
	if _, active, _ := repo.SessionRole(context.Background(), uuid.MustParse(firstClaims.SessionID)); active {
		t.Fatal("expected other session revoked")
	}
	if err := password.Compare(repo.users[user.ID].PasswordHash, "N3wPassword"); err != nil {
		t.Fatal("expected new password stored")
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	svc, repo, _ := newTestService()
	user := repo.addUser(t, "sales@example.sa", "Passw0rd", true)

	err := svc.ChangePassword(context.Background(), user.ID, uuid.New(), "wrong", "N3wPassword")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, repo, bus := newTestService()

	if err := svc.ForgotPassword(context.Background(), "ghost@example.sa"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(repo.tokens) != 0 || len(bus.published) != 0 {
		t.Fatal("expected no token and no event for unknown email")
	}
}

func TestForgotThenResetPassword(t *testing.T) {
	svc, repo, bus := newTestService()
	user := repo.addUser(t, "sales@example.sa", "Passw0rd", true)
	login, _ := svc.Login(context.Background(), "sales@example.sa", "Passw0rd", meta)
	claims, _ := httpkit.ParseSessionToken(login.Token, "test-secret")

	if err := svc.ForgotPassword(context.Background(), "sales@example.sa"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected reset event, got %d", len(bus.published))
	}
	evt := bus.published[0].(events.PasswordResetRequested)
	if evt.UserID != user.ID || evt.ResetToken == "" {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if _, ok := repo.tokens[token.HashSHA256(evt.ResetToken)]; !ok {
		t.Fatal("expected only the token hash to be stored")
	}

	if err := svc.ResetPassword(context.Background(), evt.ResetToken, "Fr3shPassword"); err != nil {
		t.Fatalf("unexpected reset error: %v", err)
	}
	if err := password.Compare(repo.users[user.ID].PasswordHash, "Fr3shPassword"); err != nil {
		t.Fatal("expected password replaced")
	}
	if _, active, _ := repo.SessionRole(context.Background(), uuid.MustParse(claims.SessionID)); active {
		t.Fatal("expected sessions revoked after reset")
	}

	err := svc.ResetPassword(context.Background(), evt.ResetToken, "An0therPassword")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected reused token rejected, got %v", err)
	}
}
