package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

// MessageRepo is append-only. The transcript is immutable history; rows
// disappear only through the plan cascade.
type MessageRepo interface {
	Append(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error)
	ListByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.Message, error)
	ListFirstByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID, limit int) ([]*types.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (mr *messageRepo) Append(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (mr *messageRepo) ListByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var out []*types.Message
	if err := transaction.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (mr *messageRepo) ListFirstByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID, limit int) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if limit <= 0 {
		limit = 10
	}
	var out []*types.Message
	if err := transaction.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
