package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/repos"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

const (
	passwordHashCost  = 12
	minPasswordLength = 6
	sessionTTL        = 30 * 24 * time.Hour
)

type AuthService interface {
	Signup(ctx context.Context, email, password string) (types.UserProjection, string, error)
	Login(ctx context.Context, email, password string) (types.UserProjection, string, error)
	// Logout is idempotent; an unknown token is not an error.
	Logout(ctx context.Context, token string) error
	// GetSessionUser returns nil for missing, invalid and expired tokens
	// alike. Callers never learn which.
	GetSessionUser(ctx context.Context, token string) (*types.UserProjection, error)
	SessionTTL() time.Duration
}

type authService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	sessionRepo repos.SessionRepo
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, sessionRepo repos.SessionRepo) AuthService {
	return &authService{
		db:          db,
		log:         baseLog.With("service", "AuthService"),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// verifyPassword never propagates bcrypt failures; a malformed stored hash
// is just a failed verification.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateToken mints 32 bytes (256 bits) from crypto/rand, hex-encoded.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (as *authService) Signup(ctx context.Context, email, password string) (types.UserProjection, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return types.UserProjection{}, "", apierr.Validation("email and password are required")
	}
	if len(password) < minPasswordLength {
		return types.UserProjection{}, "", apierr.Validation("password must be at least %d characters", minPasswordLength)
	}

	// Read-before-insert uniqueness check. Racy under concurrent signups
	// for the same address; the unique index catches the loser, and the
	// risk profile here does not justify anything stronger.
	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return types.UserProjection{}, "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return types.UserProjection{}, "", apierr.Conflict("an account with this email already exists")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return types.UserProjection{}, "", err
	}

	var user *types.User
	var token string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cErr error
		user, cErr = as.userRepo.Create(ctx, tx, &types.User{Email: email, PasswordHash: passwordHash})
		if cErr != nil {
			return fmt.Errorf("failed to create user: %w", cErr)
		}
		token, cErr = as.createSession(ctx, tx, user)
		return cErr
	})
	if err != nil {
		return types.UserProjection{}, "", err
	}
	as.log.Info("User signed up", "user_id", user.ID.String())
	return user.Projection(), token, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (types.UserProjection, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return types.UserProjection{}, "", apierr.Validation("email and password are required")
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return types.UserProjection{}, "", fmt.Errorf("failed to look up user: %w", err)
	}
	// One message for unknown email and wrong password alike.
	if user == nil || !verifyPassword(password, user.PasswordHash) {
		return types.UserProjection{}, "", apierr.New(401, "invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	token, err := as.createSession(ctx, nil, user)
	if err != nil {
		return types.UserProjection{}, "", err
	}
	as.log.Info("User logged in", "user_id", user.ID.String())
	return user.Projection(), token, nil
}

func (as *authService) createSession(ctx context.Context, tx *gorm.DB, user *types.User) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	_, err = as.sessionRepo.Create(ctx, tx, &types.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (as *authService) Logout(ctx context.Context, token string) error {
	if err := as.sessionRepo.DeleteByToken(ctx, nil, token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (as *authService) GetSessionUser(ctx context.Context, token string) (*types.UserProjection, error) {
	if token == "" {
		return nil, nil
	}
	user, err := as.sessionRepo.GetActiveUser(ctx, nil, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	p := user.Projection()
	return &p, nil
}

func (as *authService) SessionTTL() time.Duration {
	return sessionTTL
}
