package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"gorm.io/gorm"
)

// EntityRepository resolves foreign-reference targets ("notify the author
// of entity X") to a device-addressable auth user id.
type EntityRepository struct {
	db       *gorm.DB
	userRepo *UserRepository
}

func NewEntityRepository(db *gorm.DB, userRepo *UserRepository) *EntityRepository {
	return &EntityRepository{db: db, userRepo: userRepo}
}

// OwnerAuthID looks up the entity row and extracts its owning user's auth
// id. found=false when the entity or its owner is missing - that is zero
// targets, not an error.
func (r *EntityRepository) OwnerAuthID(ctx context.Context, kind string, id int64) (uuid.UUID, bool, error) {
	switch kind {
	case model.EntityKindHelpdeskQuestion:
		var q model.HelpdeskQuestion
		err := r.db.WithContext(ctx).Select("user_id").Where("id = ?", id).First(&q).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, false, nil
		}
		if err != nil {
			return uuid.Nil, false, err
		}
		if q.UserID == nil {
			return uuid.Nil, false, nil
		}
		return *q.UserID, true, nil

	case model.EntityKindReport:
		var rep model.Report
		err := r.db.WithContext(ctx).Select("reporter_id").Where("id = ?", id).First(&rep).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, false, nil
		}
		if err != nil {
			return uuid.Nil, false, err
		}
		if rep.ReporterID == nil {
			return uuid.Nil, false, nil
		}
		// Reports carry the internal numeric id; map it through users.
		return r.userRepo.AuthIDForAppUser(ctx, *rep.ReporterID)

	default:
		return uuid.Nil, false, fmt.Errorf("unknown entity kind %q", kind)
	}
}
