package promos

import (
	"github.com/mleong/mangobox-backend/internal/pricing"
	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
)

// ToPricing maps a stored promo onto the pricing engine's view of it,
// materializing the discount variant for its type.
func ToPricing(m *models.PromoCode) pricing.PromoCode {
	if m == nil {
		return pricing.PromoCode{}
	}

	var discount pricing.Discount
	switch m.DiscountType {
	case enums.DiscountPercentOfSubtotal:
		discount = pricing.PercentOfSubtotal{Percent: m.DiscountValue}
	case enums.DiscountFixedAmountOfSubtotal:
		discount = pricing.FixedAmountOfSubtotal{Amount: m.DiscountValue}
	case enums.DiscountFixedAmountPerEligibleUnit:
		discount = pricing.FixedAmountPerEligibleUnit{
			AmountPerUnit:      m.DiscountValue,
			EligibleProductIDs: append([]string(nil), m.EligibleProductSlugs...),
		}
	}

	return pricing.PromoCode{
		Code:              m.Code,
		Active:            m.Active,
		Discount:          discount,
		MinOrderSubtotal:  m.MinOrderSubtotal,
		RequiresAuth:      m.RequiresAuth,
		UsageLimitTotal:   m.UsageLimitTotal,
		UsageCount:        m.UsageCount,
		OnePerCustomer:    m.OnePerCustomer,
		UsedByCustomerIDs: append([]string(nil), m.UsedByCustomerIDs...),
		ValidFrom:         m.ValidFrom,
		ValidUntil:        m.ValidUntil,
	}
}
