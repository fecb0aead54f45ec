package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
)

// LineInput is one requested product at checkout.
type LineInput struct {
	ProductSlug string
	Quantity    int
}

// QuoteInput previews pricing for a cart without persisting anything.
type QuoteInput struct {
	Lines            []LineInput
	PromoCode        string
	DeliveryOptionID string
	DeliveryArea     *string
	Authenticated    bool
	CustomerID       string
}

// PlaceOrderInput is the storefront checkout payload after request validation.
type PlaceOrderInput struct {
	CustomerID    *string
	CustomerName  string
	CustomerPhone string

	Lines     []LineInput
	PromoCode string

	DeliveryOptionID string
	DeliveryArea     *string
	DeliveryAddress  *string
	PaymentMethodID  string
	Notes            *string

	Authenticated bool
}

// PaymentInput records money received against an order.
type PaymentInput struct {
	CashReceived   decimal.Decimal
	OnlineReceived decimal.Decimal
}

// LineUpdate is one line of an admin order edit. A zero quantity removes the
// line.
type LineUpdate struct {
	ProductSlug       string
	Name              string
	Quantity          int
	OriginalUnitPrice decimal.Decimal
	AppliedUnitPrice  decimal.Decimal
}

// AdminUpdateInput is the admin order edit payload. Totals are recomputed
// from the lines, never taken from the client.
type AdminUpdateInput struct {
	CustomerName  string
	CustomerPhone string

	Lines       []LineUpdate
	DeliveryFee decimal.Decimal

	DeliveryOptionID string
	DeliveryArea     *string
	DeliveryAddress  *string
	PaymentMethodID  string
	Notes            *string
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status *enums.OrderStatus
	Paid   *bool
	From   *time.Time
	To     *time.Time
}

// OrderList is one page of orders with the cursor for the next page.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}
