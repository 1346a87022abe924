package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthIDForAppUser maps an internal numeric user id to the auth identifier
// device tokens are registered under. found=false when the user does not
// exist or has no linked auth account.
func (r *UserRepository) AuthIDForAppUser(ctx context.Context, appUserID int64) (uuid.UUID, bool, error) {
	var user model.User
	err := r.db.WithContext(ctx).Select("auth_user_id").Where("id = ?", appUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	if user.AuthUserID == nil {
		return uuid.Nil, false, nil
	}
	return *user.AuthUserID, true, nil
}
