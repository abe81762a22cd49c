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
)

const generateTemperature = 0.7

// GeneratorService produces the long-form plan document from a transcript
// in one streaming model call. It never persists the result: the caller
// inspects the stream and commits via a plan update when satisfied.
type GeneratorService interface {
	Generate(ctx context.Context, userID, planID uuid.UUID, instructions string, onDelta func(delta string)) error
}

type generatorService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.PlanRepo
	messageRepo repos.MessageRepo
	model       openai.Client
	metrics     *observability.Metrics
}

func NewGeneratorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo repos.PlanRepo,
	messageRepo repos.MessageRepo,
	model openai.Client,
	metrics *observability.Metrics,
) GeneratorService {
	return &generatorService{
		db:          db,
		log:         baseLog.With("service", "GeneratorService"),
		planRepo:    planRepo,
		messageRepo: messageRepo,
		model:       model,
		metrics:     metrics,
	}
}

// buildGenerateMessages renders the transcript as a flat dialogue and wraps
// it in the fixed generation prompt. Free-text change instructions, when
// present, are folded in after the transcript for regeneration.
func buildGenerateMessages(dialogue string, instructions string) []openai.Message {
	user := "Here is the conversation history with the user about their business plan:\n\n" +
		dialogue +
		"\n\nPlease generate a complete, professional business plan based on all the information gathered in this conversation. Extract all relevant details about the business, market, operations, team, finances, and goals."
	if strings.TrimSpace(instructions) != "" {
		user += "\n\nApply the following changes requested by the user:\n" + strings.TrimSpace(instructions)
	}
	return []openai.Message{
		{Role: "system", Content: generateSystemPrompt},
		{Role: "user", Content: user},
	}
}

func (gs *generatorService) Generate(ctx context.Context, userID, planID uuid.UUID, instructions string, onDelta func(delta string)) error {
	plan, err := gs.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if plan == nil {
		return apierr.NotFound("plan")
	}

	transcript, err := gs.messageRepo.ListByPlan(ctx, nil, planID)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}

	msgs := buildGenerateMessages(renderDialogue(transcript), instructions)

	modelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), modelCallTimeout)
	defer cancel()

	start := time.Now()
	_, err = gs.model.StreamChat(modelCtx, msgs, generateTemperature, onDelta)
	if gs.metrics != nil {
		gs.metrics.ObserveModelCall("generate", err == nil, time.Since(start))
	}
	if err != nil {
		gs.log.Warn("Generate model stream failed", "plan_id", planID.String(), "error", err)
		return apierr.Upstream(fmt.Errorf("generate stream failed: %w", err))
	}
	return nil
}
