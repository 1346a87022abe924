package model

import (
	"time"

	"github.com/google/uuid"
)

// Push job lifecycle. Transitions are one-directional:
// queued → processing → done | failed.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)

// PushJob is one row per dispatch request in the job ledger.
type PushJob struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedBy     *uuid.UUID `json:"created_by" gorm:"type:uuid"` // nil for scheduler-created jobs
	Title         string     `json:"title" gorm:"not null"`
	Body          string     `json:"body" gorm:"not null"`
	Data          JSONMap    `json:"data" gorm:"type:jsonb"`
	Audience      JSONMap    `json:"audience" gorm:"type:jsonb"`
	TargetUserIDs UUIDSlice  `json:"target_user_ids" gorm:"type:jsonb"`
	DryRun        bool       `json:"dry_run" gorm:"not null;default:false"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	Status        string     `json:"status" gorm:"size:20;not null;default:'queued';index"`
	Result        JSONMap    `json:"result" gorm:"type:jsonb"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (PushJob) TableName() string {
	return "push_jobs"
}

// AudienceAll reports whether the job targets every enabled device.
// Explicit target user ids take precedence when both are present.
func (j *PushJob) AudienceAll() bool {
	if len(j.TargetUserIDs) > 0 {
		return false
	}
	if j.Audience == nil {
		return false
	}
	all, ok := j.Audience["all"].(bool)
	return ok && all
}

// DispatchResult summarizes one completed dispatch attempt.
type DispatchResult struct {
	DryRun         bool   `json:"dry_run"`
	Total          int    `json:"total"`
	Sent           int    `json:"sent"`
	Failed         int    `json:"failed"`
	DisabledTokens int    `json:"disabled_tokens"`
	Error          string `json:"error,omitempty"`
}

// AsMap renders the result for the jsonb result column.
func (r DispatchResult) AsMap() JSONMap {
	m := JSONMap{
		"dry_run":         r.DryRun,
		"total":           r.Total,
		"sent":            r.Sent,
		"failed":          r.Failed,
		"disabled_tokens": r.DisabledTokens,
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return m
}
