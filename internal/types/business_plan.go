package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PlanStatusDraft     = "draft"
	PlanStatusCompleted = "completed"
)

const DefaultPlanTitle = "Untitled Plan"

type BusinessPlan struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Title             string         `gorm:"not null;default:'Untitled Plan';column:title" json:"title"`
	Status            string         `gorm:"not null;default:'draft';column:status" json:"status"`
	CurrentStep       int            `gorm:"not null;default:0;column:current_step" json:"current_step"`
	StructuredAnswers datatypes.JSON `gorm:"column:structured_answers;type:jsonb" json:"structured_answers"`
	GeneratedPlanText *string        `gorm:"column:generated_plan_text" json:"generated_plan_text"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (BusinessPlan) TableName() string {
	return "business_plans"
}

// PlanSummary is the list projection: everything the dashboard needs and
// none of the heavy text columns.
type PlanSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	CurrentStep int       `json:"current_step"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
