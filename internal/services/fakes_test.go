package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/platform/openai"
	"github.com/venturedraft/venturedraft-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

type fakePlanRepo struct {
	plans map[uuid.UUID]*types.BusinessPlan
}

func newFakePlanRepo(plans ...*types.BusinessPlan) *fakePlanRepo {
	r := &fakePlanRepo{plans: map[uuid.UUID]*types.BusinessPlan{}}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *fakePlanRepo) Create(ctx context.Context, tx *gorm.DB, plan *types.BusinessPlan) (*types.BusinessPlan, error) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	r.plans[plan.ID] = plan
	return plan, nil
}

func (r *fakePlanRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]types.PlanSummary, error) {
	var out []types.PlanSummary
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, types.PlanSummary{ID: p.ID, Title: p.Title, Status: p.Status})
		}
	}
	return out, nil
}

func (r *fakePlanRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, planID, userID uuid.UUID) (*types.BusinessPlan, error) {
	p, ok := r.plans[planID]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return p, nil
}

func (r *fakePlanRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, planID uuid.UUID, title string) error {
	r.plans[planID].Title = title
	return nil
}

func (r *fakePlanRepo) UpdateStructuredAnswers(ctx context.Context, tx *gorm.DB, planID uuid.UUID, answers datatypes.JSON, currentStep int, title string) error {
	p := r.plans[planID]
	p.StructuredAnswers = answers
	p.CurrentStep = currentStep
	p.Title = title
	return nil
}

func (r *fakePlanRepo) UpdateGeneratedPlanText(ctx context.Context, tx *gorm.DB, planID uuid.UUID, text string) error {
	p := r.plans[planID]
	p.GeneratedPlanText = &text
	p.Status = types.PlanStatusCompleted
	return nil
}

func (r *fakePlanRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, planID uuid.UUID, status string) error {
	r.plans[planID].Status = status
	return nil
}

func (r *fakePlanRepo) DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, planID, userID uuid.UUID) error {
	p, ok := r.plans[planID]
	if ok && p.UserID == userID {
		delete(r.plans, planID)
	}
	return nil
}

type fakeMessageRepo struct {
	msgs map[uuid.UUID][]*types.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: map[uuid.UUID][]*types.Message{}}
}

func (r *fakeMessageRepo) Append(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	r.msgs[msg.PlanID] = append(r.msgs[msg.PlanID], msg)
	return msg, nil
}

func (r *fakeMessageRepo) ListByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID) ([]*types.Message, error) {
	return r.msgs[planID], nil
}

func (r *fakeMessageRepo) ListFirstByPlan(ctx context.Context, tx *gorm.DB, planID uuid.UUID, limit int) ([]*types.Message, error) {
	all := r.msgs[planID]
	if len(all) > limit {
		return all[:limit], nil
	}
	return all, nil
}

// fakeModel scripts the model client: the stream emits deltas then the
// configured error, Complete returns the reply whole.
type fakeModel struct {
	deltas    []string
	reply     string
	err       error
	lastMsgs  []openai.Message
	lastTemp  float64
	streamed  bool
	completed bool
}

func (m *fakeModel) StreamChat(ctx context.Context, msgs []openai.Message, temperature float64, onDelta func(delta string)) (string, error) {
	m.streamed = true
	m.lastMsgs = msgs
	m.lastTemp = temperature
	var full string
	for _, d := range m.deltas {
		onDelta(d)
		full += d
	}
	if m.err != nil {
		return "", m.err
	}
	return full, nil
}

func (m *fakeModel) Complete(ctx context.Context, msgs []openai.Message, temperature float64) (string, error) {
	m.completed = true
	m.lastMsgs = msgs
	m.lastTemp = temperature
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

var errModelDown = errors.New("model unavailable")
