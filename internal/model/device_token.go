package model

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken represents one registered device/installation.
// Tokens are never deleted by the push engine; hygiene only flips Enabled.
type DeviceToken struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Token     string     `json:"token" gorm:"not null;uniqueIndex"`
	Platform  string     `json:"platform" gorm:"size:20;default:'unknown'"` // android, ios, web
	Enabled   bool       `json:"enabled" gorm:"not null;default:true;index"`
	LastSeen  *time.Time `json:"last_seen"`
	CreatedAt time.Time  `json:"created_at"`
}

func (DeviceToken) TableName() string {
	return "device_tokens"
}

// Recency returns the timestamp used to pick among a user's tokens.
func (t *DeviceToken) Recency() time.Time {
	if t.LastSeen != nil {
		return *t.LastSeen
	}
	return t.CreatedAt
}
