package model

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest is the admin login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SendNotificationRequest creates a dispatch job. When ScheduledAt is set
// to a future time the job is queued for the scheduled runner; otherwise it
// runs synchronously within the request.
type SendNotificationRequest struct {
	Title         string                 `json:"title" binding:"required"`
	Body          string                 `json:"body" binding:"required"`
	Data          map[string]interface{} `json:"data"`
	AudienceAll   bool                   `json:"audience_all"`
	TargetUserIDs []uuid.UUID            `json:"target_user_ids"`
	ImageURL      string                 `json:"image_url"`
	DryRun        bool                   `json:"dry_run"`
	ScheduledAt   *time.Time             `json:"scheduled_at"`
}

// NotifyTargetRequest is the single-purpose shorthand for "notify the user
// behind X". Exactly one of the target fields should be set.
type NotifyTargetRequest struct {
	Title  string                 `json:"title" binding:"required"`
	Body   string                 `json:"body" binding:"required"`
	Data   map[string]interface{} `json:"data"`
	Target NotifyTarget           `json:"target" binding:"required"`
}

// NotifyTarget selects the addressee.
type NotifyTarget struct {
	AuthUserID *uuid.UUID       `json:"auth_user_id"`
	AppUserID  *int64           `json:"app_user_id"`
	Reference  *EntityReference `json:"reference"`
}

// EntityReference points at the owning user of an entity row.
type EntityReference struct {
	Kind string `json:"kind" binding:"required"`
	ID   int64  `json:"id" binding:"required"`
}
