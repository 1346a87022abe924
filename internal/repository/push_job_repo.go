package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"gorm.io/gorm"
)

// PushJobRepository is the job ledger: one row per dispatch request.
type PushJobRepository struct {
	db *gorm.DB
}

func NewPushJobRepository(db *gorm.DB) *PushJobRepository {
	return &PushJobRepository{db: db}
}

// Create inserts a new job row
func (r *PushJobRepository) Create(ctx context.Context, job *model.PushJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID fetches a job by id
func (r *PushJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PushJob, error) {
	var job model.PushJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Claim atomically transitions a queued job to processing. The guarded
// UPDATE makes concurrent claims race-safe: only the caller that flips the
// row sees claimed=true, so a job is dispatched at most once per poll cycle.
func (r *PushJobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.PushJob{}).
		Where("id = ? AND status = ?", id, model.JobStatusQueued).
		Update("status", model.JobStatusProcessing)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// Complete marks a job done and stores its result summary
func (r *PushJobRepository) Complete(ctx context.Context, id uuid.UUID, result model.DispatchResult) error {
	return r.db.WithContext(ctx).Model(&model.PushJob{}).
		Where("id = ? AND status = ?", id, model.JobStatusProcessing).
		Updates(map[string]interface{}{
			"status": model.JobStatusDone,
			"result": result.AsMap(),
		}).Error
}

// Fail marks a job failed with a best-effort error summary
func (r *PushJobRepository) Fail(ctx context.Context, id uuid.UUID, errSummary string) error {
	return r.db.WithContext(ctx).Model(&model.PushJob{}).
		Where("id = ? AND status IN ?", id, []string{model.JobStatusQueued, model.JobStatusProcessing}).
		Updates(map[string]interface{}{
			"status": model.JobStatusFailed,
			"result": model.JSONMap{"error": errSummary},
		}).Error
}

// FindDue returns up to limit queued jobs whose scheduled_at has passed,
// oldest first.
func (r *PushJobRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]model.PushJob, error) {
	var jobs []model.PushJob
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", model.JobStatusQueued, now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// ListRecent returns the newest jobs for the admin dashboard
func (r *PushJobRepository) ListRecent(ctx context.Context, limit int) ([]model.PushJob, error) {
	var jobs []model.PushJob
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
