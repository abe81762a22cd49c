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
	// Only the opening of the conversation matters for a title.
	titleTranscriptLimit = 10

	titleTemperature = 0.3

	maxTitleLength  = 30
	titleTruncateAt = 27

	fallbackTitle = "Business Plan"
)

// TitlerService compresses a transcript prefix into a short plan label.
type TitlerService interface {
	SummarizeTitle(ctx context.Context, userID, planID uuid.UUID) (string, error)
}

type titlerService struct {
	db          *gorm.DB
	log         *logger.Logger
	planRepo    repos.PlanRepo
	messageRepo repos.MessageRepo
	model       openai.Client
	metrics     *observability.Metrics
}

func NewTitlerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	planRepo repos.PlanRepo,
	messageRepo repos.MessageRepo,
	model openai.Client,
	metrics *observability.Metrics,
) TitlerService {
	return &titlerService{
		db:          db,
		log:         baseLog.With("service", "TitlerService"),
		planRepo:    planRepo,
		messageRepo: messageRepo,
		model:       model,
		metrics:     metrics,
	}
}

// cleanTitle applies the deterministic post-processing every model output
// goes through: strip one layer of wrapping quotes, collapse whitespace
// runs, trim.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = stripWrappingQuote(title)
	title = strings.Join(strings.Fields(title), " ")
	return title
}

// stripWrappingQuote removes at most one quote character from each end, so a
// nested quoting like `"'Bakery'"` keeps its inner quotes.
func stripWrappingQuote(title string) string {
	if len(title) > 0 && (title[0] == '"' || title[0] == '\'') {
		title = title[1:]
	}
	if len(title) > 0 && (title[len(title)-1] == '"' || title[len(title)-1] == '\'') {
		title = title[:len(title)-1]
	}
	return title
}

// truncateTitle cuts anything past the length budget down to a prefix plus
// an ellipsis marker. A title at the budget is untouched. Lengths are in
// runes so multi-byte titles are never cut mid-character.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		return string(runes[:titleTruncateAt]) + "..."
	}
	return title
}

func firstUserContent(transcript []*types.Message) string {
	for _, m := range transcript {
		if m.Role == types.RoleUser {
			return strings.TrimSpace(m.Content)
		}
	}
	return ""
}

func (ts *titlerService) SummarizeTitle(ctx context.Context, userID, planID uuid.UUID) (string, error) {
	plan, err := ts.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if plan == nil {
		return "", apierr.NotFound("plan")
	}

	transcript, err := ts.messageRepo.ListFirstByPlan(ctx, nil, planID, titleTranscriptLimit)
	if err != nil {
		return "", fmt.Errorf("failed to load transcript: %w", err)
	}

	msgs := []openai.Message{
		{Role: "system", Content: titleSystemPrompt + "\n\n" + renderDialogue(transcript)},
		{Role: "user", Content: "Generate the title now:"},
	}

	modelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), modelCallTimeout)
	defer cancel()

	start := time.Now()
	raw, err := ts.model.Complete(modelCtx, msgs, titleTemperature)
	if ts.metrics != nil {
		ts.metrics.ObserveModelCall("title", err == nil, time.Since(start))
	}
	if err != nil {
		ts.log.Warn("Title model call failed", "plan_id", planID.String(), "error", err)
		return "", apierr.Upstream(fmt.Errorf("title generation failed: %w", err))
	}

	title := cleanTitle(raw)
	if title == "" {
		title = firstUserContent(transcript)
	}
	if title == "" {
		title = fallbackTitle
	}
	return truncateTitle(title), nil
}
