package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

type SessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error)
	// GetActiveUser resolves a token to its owning user, only while the
	// session is unexpired. Missing and expired both come back as nil.
	GetActiveUser(ctx context.Context, tx *gorm.DB, token string) (*types.User, error)
	DeleteByToken(ctx context.Context, tx *gorm.DB, token string) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (sr *sessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (sr *sessionRepo) GetActiveUser(ctx context.Context, tx *gorm.DB, token string) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if token == "" {
		return nil, nil
	}
	var user types.User
	err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Joins("JOIN sessions ON sessions.user_id = users.id").
		Where("sessions.token = ? AND sessions.expires_at > ?", token, time.Now()).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteByToken is a no-op when the token is unknown; logout must be
// idempotent.
func (sr *sessionRepo) DeleteByToken(ctx context.Context, tx *gorm.DB, token string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if token == "" {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("token = ?", token).
		Delete(&types.Session{}).Error
}
