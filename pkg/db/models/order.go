package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/enums"
	"github.com/mleong/mangobox-backend/pkg/types"
)

// Order is a placed storefront order with its pricing snapshot and manual
// payment tracking.
type Order struct {
	ID     uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number string            `gorm:"column:number;not null;uniqueIndex"`
	Status enums.OrderStatus `gorm:"column:status;not null;default:'ordered'"`

	CustomerID    *string `gorm:"column:customer_id"`
	CustomerName  string  `gorm:"column:customer_name;not null"`
	CustomerPhone string  `gorm:"column:customer_phone;not null"`

	DeliveryOptionID string  `gorm:"column:delivery_option_id;not null"`
	DeliveryArea     *string `gorm:"column:delivery_area"`
	DeliveryAddress  *string `gorm:"column:delivery_address"`

	PaymentMethodID string `gorm:"column:payment_method_id;not null"`

	SubtotalOriginal      decimal.Decimal     `gorm:"column:subtotal_original;type:numeric(10,2);not null"`
	TotalDiscount         decimal.Decimal     `gorm:"column:total_discount;type:numeric(10,2);not null;default:0"`
	SubtotalAfterDiscount decimal.Decimal     `gorm:"column:subtotal_after_discount;type:numeric(10,2);not null"`
	DeliveryFee           decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	GrandTotal            decimal.Decimal     `gorm:"column:grand_total;type:numeric(10,2);not null"`
	AppliedPromo          *types.AppliedPromo `gorm:"column:applied_promo;type:jsonb"`

	CashReceived   decimal.Decimal `gorm:"column:cash_received;type:numeric(10,2);not null;default:0"`
	OnlineReceived decimal.Decimal `gorm:"column:online_received;type:numeric(10,2);not null;default:0"`
	Balance        decimal.Decimal `gorm:"column:balance;type:numeric(10,2);not null;default:0"`
	Paid           bool            `gorm:"column:paid;not null;default:false"`

	Notes *string `gorm:"column:notes"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID;references:ID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
