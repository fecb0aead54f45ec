package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/enums"
)

// PromoCode is a storefront discount code. The code column holds the
// canonical uppercase form; lookups uppercase their input first.
type PromoCode struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                 string             `gorm:"column:code;not null;uniqueIndex"`
	Description          *string            `gorm:"column:description"`
	Active               bool               `gorm:"column:active;not null;default:true"`
	DiscountType         enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue        decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	EligibleProductSlugs pq.StringArray     `gorm:"column:eligible_product_slugs;type:text[]"`
	MinOrderSubtotal     decimal.Decimal    `gorm:"column:min_order_subtotal;type:numeric(10,2);not null;default:0"`
	RequiresAuth         bool               `gorm:"column:requires_auth;not null;default:false"`
	UsageLimitTotal      int                `gorm:"column:usage_limit_total;not null;default:0"`
	UsageCount           int                `gorm:"column:usage_count;not null;default:0"`
	OnePerCustomer       bool               `gorm:"column:one_per_customer;not null;default:false"`
	UsedByCustomerIDs    pq.StringArray     `gorm:"column:used_by_customer_ids;type:text[]"`
	ValidFrom            *time.Time         `gorm:"column:valid_from"`
	ValidUntil           *time.Time         `gorm:"column:valid_until"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
