package admins

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
)

// Repository persists admin users.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByEmail loads an admin by email, case-insensitively.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).
		First(&user, "LOWER(email) = LOWER(?)", strings.TrimSpace(email)).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new admin user.
func (r *Repository) Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Count returns how many admin users exist.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
