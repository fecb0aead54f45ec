package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryOption is a configured delivery method (grab, lalamove, pickup).
type DeliveryOption struct {
	ID        string          `gorm:"column:id;primaryKey"`
	Label     string          `gorm:"column:label;not null"`
	BaseFee   decimal.Decimal `gorm:"column:base_fee;type:numeric(10,2);not null;default:0"`
	Pickup    bool            `gorm:"column:pickup;not null;default:false"`
	IsDefault bool            `gorm:"column:is_default;not null;default:false"`
	SortOrder int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryAreaFee overrides an option's base fee for a named area.
type DeliveryAreaFee struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Area             string          `gorm:"column:area;not null;uniqueIndex:idx_area_option"`
	DeliveryOptionID string          `gorm:"column:delivery_option_id;not null;uniqueIndex:idx_area_option"`
	Fee              decimal.Decimal `gorm:"column:fee;type:numeric(10,2);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
