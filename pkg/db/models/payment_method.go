package models

import "time"

// PaymentMethod is a manual payment channel offered at checkout.
type PaymentMethod struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Label     string    `gorm:"column:label;not null"`
	Enabled   bool      `gorm:"column:enabled;not null;default:true"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
