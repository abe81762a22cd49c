package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/repos"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

// PlanUpdate carries the optional PATCH fields. Each non-nil field triggers
// its own write; any combination is valid, including none.
type PlanUpdate struct {
	Title             *string
	StructuredAnswers json.RawMessage
	CurrentStep       *int
	GeneratedPlanText *string
	Status            *string
}

type PlanService interface {
	List(ctx context.Context, userID uuid.UUID) ([]types.PlanSummary, error)
	Get(ctx context.Context, userID, planID uuid.UUID) (*types.BusinessPlan, error)
	Create(ctx context.Context, userID uuid.UUID, title string) (*types.BusinessPlan, error)
	Update(ctx context.Context, userID, planID uuid.UUID, upd PlanUpdate) (*types.BusinessPlan, error)
	Delete(ctx context.Context, userID, planID uuid.UUID) error
}

type planService struct {
	db       *gorm.DB
	log      *logger.Logger
	planRepo repos.PlanRepo
}

func NewPlanService(db *gorm.DB, baseLog *logger.Logger, planRepo repos.PlanRepo) PlanService {
	return &planService{
		db:       db,
		log:      baseLog.With("service", "PlanService"),
		planRepo: planRepo,
	}
}

func (ps *planService) List(ctx context.Context, userID uuid.UUID) ([]types.PlanSummary, error) {
	plans, err := ps.planRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		plans = []types.PlanSummary{}
	}
	return plans, nil
}

func (ps *planService) Get(ctx context.Context, userID, planID uuid.UUID) (*types.BusinessPlan, error) {
	plan, err := ps.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apierr.NotFound("plan")
	}
	return plan, nil
}

func (ps *planService) Create(ctx context.Context, userID uuid.UUID, title string) (*types.BusinessPlan, error) {
	plan, err := ps.planRepo.Create(ctx, nil, &types.BusinessPlan{
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, nil
}

func (ps *planService) Update(ctx context.Context, userID, planID uuid.UUID, upd PlanUpdate) (*types.BusinessPlan, error) {
	existing, err := ps.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check plan ownership: %w", err)
	}
	if existing == nil {
		return nil, apierr.NotFound("plan")
	}

	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if upd.Title != nil {
			if err := ps.planRepo.UpdateTitle(ctx, tx, planID, *upd.Title); err != nil {
				return fmt.Errorf("failed to update title: %w", err)
			}
		}
		if upd.StructuredAnswers != nil {
			step := 0
			if upd.CurrentStep != nil {
				step = *upd.CurrentStep
			}
			title := existing.Title
			if upd.Title != nil && *upd.Title != "" {
				title = *upd.Title
			}
			if title == "" {
				title = types.DefaultPlanTitle
			}
			if err := ps.planRepo.UpdateStructuredAnswers(ctx, tx, planID, datatypes.JSON(upd.StructuredAnswers), step, title); err != nil {
				return fmt.Errorf("failed to update structured answers: %w", err)
			}
		}
		if upd.GeneratedPlanText != nil {
			if err := ps.planRepo.UpdateGeneratedPlanText(ctx, tx, planID, *upd.GeneratedPlanText); err != nil {
				return fmt.Errorf("failed to update generated plan text: %w", err)
			}
		}
		if upd.Status != nil {
			if err := ps.planRepo.UpdateStatus(ctx, tx, planID, *upd.Status); err != nil {
				return fmt.Errorf("failed to update status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan, err := ps.planRepo.GetByIDAndUser(ctx, nil, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload plan: %w", err)
	}
	if plan == nil {
		return nil, apierr.NotFound("plan")
	}
	return plan, nil
}

func (ps *planService) Delete(ctx context.Context, userID, planID uuid.UUID) error {
	if err := ps.planRepo.DeleteByIDAndUser(ctx, nil, planID, userID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}
