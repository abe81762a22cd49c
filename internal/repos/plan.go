package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

type PlanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plan *types.BusinessPlan) (*types.BusinessPlan, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.PlanSummary, error)
	// GetByIDAndUser returns nil both when the plan does not exist and when
	// it belongs to a different user. Callers must not tell those apart.
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, planID, userID uuid.UUID) (*types.BusinessPlan, error)

	// Each update path below is an independent conditional write; the plan
	// PATCH may invoke zero, one, or several of them in a single call.
	UpdateTitle(ctx context.Context, tx *gorm.DB, planID uuid.UUID, title string) error
	UpdateStructuredAnswers(ctx context.Context, tx *gorm.DB, planID uuid.UUID, answers datatypes.JSON, currentStep int, title string) error
	UpdateGeneratedPlanText(ctx context.Context, tx *gorm.DB, planID uuid.UUID, text string) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, planID uuid.UUID, status string) error

	DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, planID, userID uuid.UUID) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (pr *planRepo) Create(ctx context.Context, tx *gorm.DB, plan *types.BusinessPlan) (*types.BusinessPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.Title == "" {
		plan.Title = types.DefaultPlanTitle
	}
	if plan.Status == "" {
		plan.Status = types.PlanStatusDraft
	}
	if err := transaction.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (pr *planRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.PlanSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var out []types.PlanSummary
	if err := transaction.WithContext(ctx).
		Model(&types.BusinessPlan{}).
		Select("id, title, status, current_step, created_at, updated_at").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (pr *planRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, planID, userID uuid.UUID) (*types.BusinessPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var plan types.BusinessPlan
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", planID, userID).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateTitle deliberately leaves updated_at alone. A cosmetic rename must
// not reorder the plan list, which sorts on updated_at.
func (pr *planRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, planID uuid.UUID, title string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BusinessPlan{}).
		Where("id = ?", planID).
		UpdateColumn("title", title).Error
}

func (pr *planRepo) UpdateStructuredAnswers(ctx context.Context, tx *gorm.DB, planID uuid.UUID, answers datatypes.JSON, currentStep int, title string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BusinessPlan{}).
		Where("id = ?", planID).
		UpdateColumns(map[string]interface{}{
			"structured_answers": answers,
			"current_step":       currentStep,
			"title":              title,
			"updated_at":         time.Now(),
		}).Error
}

// Writing generated text marks the plan completed in the same statement.
func (pr *planRepo) UpdateGeneratedPlanText(ctx context.Context, tx *gorm.DB, planID uuid.UUID, text string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BusinessPlan{}).
		Where("id = ?", planID).
		UpdateColumns(map[string]interface{}{
			"generated_plan_text": text,
			"status":              types.PlanStatusCompleted,
			"updated_at":          time.Now(),
		}).Error
}

func (pr *planRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, planID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BusinessPlan{}).
		Where("id = ?", planID).
		UpdateColumns(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// DeleteByIDAndUser is a no-op when nothing matches; deleting an absent or
// foreign plan is not an error.
func (pr *planRepo) DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, planID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", planID, userID).
		Delete(&types.BusinessPlan{}).Error
}
