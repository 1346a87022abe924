package model

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the platform's user profile table. AuthUserID is the
// Supabase auth identifier that device tokens are registered under; ID is
// the internal numeric key older entity tables reference.
type User struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthUserID *uuid.UUID `json:"auth_user_id" gorm:"type:uuid;uniqueIndex"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null"`
	Password   string     `json:"-" gorm:"not null"`
	Name       string     `json:"name" gorm:"size:100"`
	IsAdmin    bool       `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
