package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mleong/mangobox-backend/pkg/enums"
)

// AdminUser can sign in to the admin surface.
type AdminUser struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.AdminRole `gorm:"column:role;not null;default:'owner'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
