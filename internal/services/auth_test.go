package services

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

type fakeUserRepo struct {
	byEmail map[string]*types.User
}

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	r := &fakeUserRepo{byEmail: map[string]*types.User{}}
	for _, u := range users {
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.byEmail[user.Email] = user
	return user, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	for _, u := range r.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

type fakeSessionRepo struct {
	sessions map[string]*types.Session
	users    map[uuid.UUID]*types.User
}

func newFakeSessionRepo(users *fakeUserRepo) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: map[string]*types.Session{}, users: map[uuid.UUID]*types.User{}}
	for _, u := range users.byEmail {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error) {
	r.sessions[session.Token] = session
	return session, nil
}

func (r *fakeSessionRepo) GetActiveUser(ctx context.Context, tx *gorm.DB, token string) (*types.User, error) {
	s, ok := r.sessions[token]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	return r.users[s.UserID], nil
}

func (r *fakeSessionRepo) DeleteByToken(ctx context.Context, tx *gorm.DB, token string) error {
	delete(r.sessions, token)
	return nil
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("hash must not equal the password")
	}
	if !verifyPassword("hunter22", hash) {
		t.Fatalf("correct password must verify")
	}
	if verifyPassword("hunter23", hash) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestVerifyPassword_MalformedHashFailsClosed(t *testing.T) {
	if verifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed stored hash must fail verification")
	}
}

func TestGenerateToken_HexAndUnique(t *testing.T) {
	a, err := generateToken()
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("token length = %d, want 64 hex chars", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	b, _ := generateToken()
	if a == b {
		t.Fatalf("two tokens must not collide")
	}
}

func TestLogin_SingleMessageForBothFailureModes(t *testing.T) {
	hash, _ := hashPassword("correct-pw")
	user := &types.User{ID: uuid.New(), Email: "a@b.com", PasswordHash: hash}
	userRepo := newFakeUserRepo(user)
	svc := NewAuthService(nil, testLogger(t), userRepo, newFakeSessionRepo(userRepo))

	_, _, unknownErr := svc.Login(context.Background(), "nobody@b.com", "whatever")
	_, _, wrongErr := svc.Login(context.Background(), "a@b.com", "wrong-pw")

	var ae1, ae2 *apierr.Error
	if !errors.As(unknownErr, &ae1) || !errors.As(wrongErr, &ae2) {
		t.Fatalf("expected api errors, got %v / %v", unknownErr, wrongErr)
	}
	if ae1.Status != 401 || ae2.Status != 401 {
		t.Fatalf("both failure modes must be 401")
	}
	if ae1.Error() != ae2.Error() {
		t.Fatalf("messages differ: %q vs %q", ae1.Error(), ae2.Error())
	}
}

func TestLogin_SuccessMintsSession(t *testing.T) {
	hash, _ := hashPassword("correct-pw")
	user := &types.User{ID: uuid.New(), Email: "a@b.com", PasswordHash: hash}
	userRepo := newFakeUserRepo(user)
	sessionRepo := newFakeSessionRepo(userRepo)
	svc := NewAuthService(nil, testLogger(t), userRepo, sessionRepo)

	proj, token, err := svc.Login(context.Background(), " A@B.com ", "correct-pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proj.ID != user.ID || proj.Email != user.Email {
		t.Fatalf("unexpected projection: %+v", proj)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d", len(token))
	}
	s, ok := sessionRepo.sessions[token]
	if !ok {
		t.Fatalf("session not stored")
	}
	if s.UserID != user.ID {
		t.Fatalf("session bound to wrong user")
	}
	if until := time.Until(s.ExpiresAt); until < 29*24*time.Hour || until > 31*24*time.Hour {
		t.Fatalf("expiry not ~30 days out: %v", until)
	}
}

func TestGetSessionUser_EmptyAndUnknownTokens(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(nil, testLogger(t), userRepo, newFakeSessionRepo(userRepo))

	u, err := svc.GetSessionUser(context.Background(), "")
	if err != nil || u != nil {
		t.Fatalf("empty token: got %v, %v", u, err)
	}
	u, err = svc.GetSessionUser(context.Background(), "deadbeef")
	if err != nil || u != nil {
		t.Fatalf("unknown token: got %v, %v", u, err)
	}
}

func TestLogout_UnknownTokenIsNotAnError(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(nil, testLogger(t), userRepo, newFakeSessionRepo(userRepo))
	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("logout must be idempotent: %v", err)
	}
}
