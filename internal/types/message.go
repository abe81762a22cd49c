package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed set. Anything else is rejected at the service boundary
// before it can reach a row.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Message is append-only. There is deliberately no update or delete path;
// rows go away only when their plan cascades.
type Message struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"plan_id"`
	Plan      *BusinessPlan `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanID;references:ID" json:"-"`
	Role      Role          `gorm:"not null;column:role" json:"role"`
	Content   string        `gorm:"not null;column:content" json:"content"`
	CreatedAt time.Time     `gorm:"not null;default:now();index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
