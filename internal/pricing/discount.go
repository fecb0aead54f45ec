package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/enums"
)

// Discount is the sealed set of promo discount variants. Each variant carries
// exactly the fields its discount type needs.
type Discount interface {
	Type() enums.DiscountType
}

// PercentOfSubtotal removes a percentage of the cart subtotal.
type PercentOfSubtotal struct {
	Percent decimal.Decimal
}

func (PercentOfSubtotal) Type() enums.DiscountType { return enums.DiscountPercentOfSubtotal }

// FixedAmountOfSubtotal removes a flat amount from the cart subtotal.
type FixedAmountOfSubtotal struct {
	Amount decimal.Decimal
}

func (FixedAmountOfSubtotal) Type() enums.DiscountType { return enums.DiscountFixedAmountOfSubtotal }

// FixedAmountPerEligibleUnit removes a flat amount from each unit of the
// promo's eligible products.
type FixedAmountPerEligibleUnit struct {
	AmountPerUnit      decimal.Decimal
	EligibleProductIDs []string
}

func (FixedAmountPerEligibleUnit) Type() enums.DiscountType {
	return enums.DiscountFixedAmountPerEligibleUnit
}

func (d FixedAmountPerEligibleUnit) eligible(productID string) bool {
	for _, id := range d.EligibleProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// PromoCode is the engine's view of a promo. The code is canonical uppercase;
// lookups are case-insensitive at the storage layer.
type PromoCode struct {
	Code              string
	Active            bool
	Discount          Discount
	MinOrderSubtotal  decimal.Decimal
	RequiresAuth      bool
	UsageLimitTotal   int // 0 means unlimited
	UsageCount        int
	OnePerCustomer    bool
	UsedByCustomerIDs []string
	ValidFrom         *time.Time
	ValidUntil        *time.Time
}

// Value returns the configured discount value regardless of variant.
func (p PromoCode) Value() decimal.Decimal {
	switch d := p.Discount.(type) {
	case PercentOfSubtotal:
		return d.Percent
	case FixedAmountOfSubtotal:
		return d.Amount
	case FixedAmountPerEligibleUnit:
		return d.AmountPerUnit
	default:
		return decimal.Zero
	}
}
