package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository handles database operations for DeviceToken
type DeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Register adds or refreshes a device token (registration flow upsert)
func (r *DeviceTokenRepository) Register(ctx context.Context, userID uuid.UUID, token, platform string) error {
	now := time.Now()
	row := model.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
		Enabled:  true,
		LastSeen: &now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":   userID,
			"platform":  platform,
			"enabled":   true,
			"last_seen": now,
		}),
	}).Create(&row).Error
}

// ActiveByUserIDs fetches enabled tokens for the given users
func (r *DeviceTokenRepository) ActiveByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]model.DeviceToken, error) {
	var tokens []model.DeviceToken
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND user_id IN ?", true, userIDs).
		Order("created_at ASC").
		Find(&tokens).Error
	return tokens, err
}

// AllActive fetches every enabled token. Callers should expect this to be
// large for an "all users" audience.
func (r *DeviceTokenRepository) AllActive(ctx context.Context) ([]model.DeviceToken, error) {
	var tokens []model.DeviceToken
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("created_at ASC").
		Find(&tokens).Error
	return tokens, err
}

// DisableTokens flips enabled=false for every token the gateway reported as
// permanently invalid. Idempotent; rows are never deleted.
func (r *DeviceTokenRepository) DisableTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.DeviceToken{}).
		Where("token IN ?", tokens).
		Update("enabled", false).Error
}
