package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/repos"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

type MessageService interface {
	Append(ctx context.Context, userID, planID uuid.UUID, role types.Role, content string) (*types.Message, error)
	List(ctx context.Context, userID, planID uuid.UUID) ([]*types.Message, error)
}

type messageService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.PlanRepo
	messageRepo repos.MessageRepo
}

func NewMessageService(db *gorm.DB, baseLog *logger.Logger, planRepo repos.PlanRepo, messageRepo repos.MessageRepo) MessageService {
	return &messageService{
		db:          db,
		log:         baseLog.With("service", "MessageService"),
		planRepo:    planRepo,
		messageRepo: messageRepo,
	}
}

func (ms *messageService) Append(ctx context.Context, userID, planID uuid.UUID, role types.Role, content string) (*types.Message, error) {
	if strings.TrimSpace(content) == "" || role == "" {
		return nil, apierr.Validation("role and content are required")
	}
	if !role.Valid() {
		return nil, apierr.Validation("invalid role %q", role)
	}

	plan, err := ms.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if plan == nil {
		return nil, apierr.NotFound("plan")
	}

	msg, err := ms.messageRepo.Append(ctx, nil, &types.Message{
		PlanID:  planID,
		Role:    role,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

func (ms *messageService) List(ctx context.Context, userID, planID uuid.UUID) ([]*types.Message, error) {
	plan, err := ms.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if plan == nil {
		return nil, apierr.NotFound("plan")
	}

	msgs, err := ms.messageRepo.ListByPlan(ctx, nil, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if msgs == nil {
		msgs = []*types.Message{}
	}
	return msgs, nil
}
