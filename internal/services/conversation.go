package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/observability"
	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/platform/openai"
	"github.com/venturedraft/venturedraft-backend/internal/repos"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

const (
	// defaultSufficiencyThreshold is the user-turn count at which the system
	// prompt starts nudging toward plan generation. Advisory only.
	defaultSufficiencyThreshold = 8

	chatTemperature = 0.7

	// modelCallTimeout bounds one model stream end to end.
	modelCallTimeout = 120 * time.Second
)

// ConversationService turns a stored transcript plus one new user utterance
// into a streamed assistant reply, persisting the reply once the stream
// completes. The caller persists the user utterance itself, before invoking
// Chat.
type ConversationService interface {
	Chat(ctx context.Context, userID, planID uuid.UUID, message string, onDelta func(delta string)) error
}

type conversationService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.PlanRepo
	messageRepo repos.MessageRepo
	model       openai.Client
	metrics     *observability.Metrics
	threshold   int
}

func NewConversationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo repos.PlanRepo,
	messageRepo repos.MessageRepo,
	model openai.Client,
	metrics *observability.Metrics,
	sufficiencyThreshold int,
) ConversationService {
	if sufficiencyThreshold <= 0 {
		sufficiencyThreshold = defaultSufficiencyThreshold
	}
	return &conversationService{
		db:          db,
		log:         baseLog.With("service", "ConversationService"),
		planRepo:    planRepo,
		messageRepo: messageRepo,
		model:       model,
		metrics:     metrics,
		threshold:   sufficiencyThreshold,
	}
}

// buildChatMessages assembles the model input: system instruction with the
// sufficiency hint, the transcript mapped to model roles (system rows are
// not conversational turns and are dropped), and the new utterance last.
func buildChatMessages(transcript []*types.Message, newMessage string, threshold int) []openai.Message {
	hint := gatherMoreHint
	if hasEnoughInformation(transcript, threshold) {
		hint = sufficientInfoHint
	}

	msgs := make([]openai.Message, 0, len(transcript)+2)
	msgs = append(msgs, openai.Message{Role: "system", Content: chatSystemPrompt + hint})
	for _, m := range transcript {
		switch m.Role {
		case types.RoleUser, types.RoleAssistant:
			msgs = append(msgs, openai.Message{Role: string(m.Role), Content: m.Content})
		}
	}
	msgs = append(msgs, openai.Message{Role: "user", Content: newMessage})
	return msgs
}

func (cs *conversationService) Chat(ctx context.Context, userID, planID uuid.UUID, message string, onDelta func(delta string)) error {
	if strings.TrimSpace(message) == "" {
		return apierr.Validation("message is required")
	}

	plan, err := cs.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if plan == nil {
		return apierr.NotFound("plan")
	}

	transcript, err := cs.messageRepo.ListByPlan(ctx, nil, planID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}

	msgs := buildChatMessages(transcript, message, cs.threshold)

	// The model call runs detached from request cancellation: if the client
	// disconnects mid-stream we still drain the stream and persist the
	// reply, so billed model output is never silently lost. Forwarding to a
	// gone client is the handler's problem.
	modelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), modelCallTimeout)
	defer cancel()

	start := time.Now()
	full, err := cs.model.StreamChat(modelCtx, msgs, chatTemperature, onDelta)
	if cs.metrics != nil {
		cs.metrics.ObserveModelCall("chat", err == nil, time.Since(start))
	}
	if err != nil {
		// Partial output already reached the client and cannot be unsent;
		// nothing is persisted for a broken stream.
		cs.log.Warn("Chat model stream failed", "plan_id", planID.String(), "error", err)
		return apierr.Upstream(fmt.Errorf("chat stream failed: %w", err))
	}

	if _, err := cs.messageRepo.Append(modelCtx, nil, &types.Message{
		PlanID:  planID,
		Role:    types.RoleAssistant,
		Content: full,
	}); err != nil {
		return fmt.Errorf("failed to persist assistant reply: %w", err)
	}
	return nil
}
