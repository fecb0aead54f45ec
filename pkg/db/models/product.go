package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a mango box variety sold on the storefront. The slug is the
// stable identifier carts and promos refer to.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug         string          `gorm:"column:slug;not null;uniqueIndex"`
	Name         string          `gorm:"column:name;not null"`
	Description  *string         `gorm:"column:description"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	UnitWeightKG decimal.Decimal `gorm:"column:unit_weight_kg;type:numeric(10,3);not null;default:0"`
	Available    bool            `gorm:"column:available;not null;default:true"`
	SortOrder    int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
