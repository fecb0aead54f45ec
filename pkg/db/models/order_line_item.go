package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem captures the priced snapshot of one product on an order.
type OrderLineItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID         *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	ProductSlug       string          `gorm:"column:product_slug;not null"`
	Name              string          `gorm:"column:name;not null"`
	Quantity          int             `gorm:"column:quantity;not null"`
	OriginalUnitPrice decimal.Decimal `gorm:"column:original_unit_price;type:numeric(10,2);not null"`
	AppliedUnitPrice  decimal.Decimal `gorm:"column:applied_unit_price;type:numeric(10,2);not null"`
	PerUnitDiscount   decimal.Decimal `gorm:"column:per_unit_discount;type:numeric(10,2);not null;default:0"`
	LineTotal         decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	Discounted        bool            `gorm:"column:discounted;not null;default:false"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
