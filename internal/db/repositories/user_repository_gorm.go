package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	gormModels "flightdeck/logbook/internal/models/gorm"
)

type UserRepositoryGORM struct {
	db *gorm.DB
}

// NewUserRepositoryGORM creates a new GORM-based user repository
func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

// FindByExternalID retrieves a user by the identity the auth collaborator
// puts on the request.
func (r *UserRepositoryGORM) FindByExternalID(ctx context.Context, externalID string) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where("external_id = ? AND is_active = ?", externalID, true).
		First(&user).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// Create inserts a new user
func (r *UserRepositoryGORM) Create(ctx context.Context, user *gormModels.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
