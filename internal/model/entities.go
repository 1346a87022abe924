package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity kinds the push engine can address by foreign reference.
const (
	EntityKindHelpdeskQuestion = "helpdesk_question"
	EntityKindReport           = "report"
)

// HelpdeskQuestion is the help-desk entity the admin can reply-notify on.
// The author is stored directly as the device-addressable auth id.
type HelpdeskQuestion struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Title     string     `json:"title" gorm:"not null"`
	Content   string     `json:"content" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
}

func (HelpdeskQuestion) TableName() string {
	return "helpdesk_questions"
}

// Report is an anti-fraud report. Its author is stored as the internal
// numeric user id and needs the users-table mapping to become addressable.
type Report struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReporterID *int64    `json:"reporter_id" gorm:"index"`
	Category   string    `json:"category" gorm:"size:50"`
	Content    string    `json:"content" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}
