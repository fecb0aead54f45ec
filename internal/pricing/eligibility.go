package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// IneligibilityReason explains why a promo cannot be applied.
type IneligibilityReason string

const (
	ReasonInactive              IneligibilityReason = "INACTIVE"
	ReasonLoginRequired         IneligibilityReason = "LOGIN_REQUIRED"
	ReasonNotYetValid           IneligibilityReason = "NOT_YET_VALID"
	ReasonExpired               IneligibilityReason = "EXPIRED"
	ReasonBelowMinimum          IneligibilityReason = "BELOW_MINIMUM"
	ReasonUsageLimitReached     IneligibilityReason = "USAGE_LIMIT_REACHED"
	ReasonAlreadyUsedByCustomer IneligibilityReason = "ALREADY_USED_BY_CUSTOMER"
)

// EligibilityContext carries everything eligibility depends on. The subtotal
// is the cart at original prices, before any discount.
type EligibilityContext struct {
	CartSubtotal  decimal.Decimal
	Authenticated bool
	CustomerID    string
	Now           time.Time
}

// Eligibility is the outcome of a promo eligibility check.
type Eligibility struct {
	Eligible bool
	Reason   IneligibilityReason
}

// ValidatePromoEligibility runs the eligibility checks in a fixed order and
// returns the first failure. Cart composition is deliberately not inspected:
// a per-eligible-unit promo on a cart with no eligible items is eligible and
// simply deducts nothing.
func ValidatePromoEligibility(promo PromoCode, ctx EligibilityContext) Eligibility {
	if !promo.Active {
		return ineligible(ReasonInactive)
	}
	if promo.RequiresAuth && !ctx.Authenticated {
		return ineligible(ReasonLoginRequired)
	}
	if promo.ValidFrom != nil && ctx.Now.Before(*promo.ValidFrom) {
		return ineligible(ReasonNotYetValid)
	}
	if promo.ValidUntil != nil && ctx.Now.After(*promo.ValidUntil) {
		return ineligible(ReasonExpired)
	}
	if promo.MinOrderSubtotal.IsPositive() && ctx.CartSubtotal.LessThan(promo.MinOrderSubtotal) {
		return ineligible(ReasonBelowMinimum)
	}
	if promo.UsageLimitTotal > 0 && promo.UsageCount >= promo.UsageLimitTotal {
		return ineligible(ReasonUsageLimitReached)
	}
	if promo.OnePerCustomer && ctx.CustomerID != "" {
		for _, id := range promo.UsedByCustomerIDs {
			if id == ctx.CustomerID {
				return ineligible(ReasonAlreadyUsedByCustomer)
			}
		}
	}
	return Eligibility{Eligible: true}
}

func ineligible(reason IneligibilityReason) Eligibility {
	return Eligibility{Reason: reason}
}
