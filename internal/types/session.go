package types

import (
	"time"

	"github.com/google/uuid"
)

// Session is an opaque bearer token row. The token itself is the primary
// key: 32 random bytes hex-encoded, minted once and never derived.
type Session struct {
	Token     string    `gorm:"primaryKey;column:token" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}
