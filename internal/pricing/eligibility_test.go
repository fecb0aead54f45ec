package pricing

import (
	"testing"
	"time"
)

func basePromo() PromoCode {
	return PromoCode{
		Code:     "WELCOME",
		Active:   true,
		Discount: FixedAmountOfSubtotal{Amount: dec("10")},
	}
}

func baseContext() EligibilityContext {
	return EligibilityContext{
		CartSubtotal: dec("150"),
		Now:          time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

func TestEligibleByDefault(t *testing.T) {
	t.Parallel()

	result := ValidatePromoEligibility(basePromo(), baseContext())
	if !result.Eligible {
		t.Fatalf("expected eligible, got reason %s", result.Reason)
	}
}

func TestInactive(t *testing.T) {
	t.Parallel()

	promo := basePromo()
	promo.Active = false

	result := ValidatePromoEligibility(promo, baseContext())
	if result.Eligible || result.Reason != ReasonInactive {
		t.Fatalf("expected %s, got %+v", ReasonInactive, result)
	}
}

func TestLoginRequired(t *testing.T) {
	t.Parallel()

	promo := basePromo()
	promo.RequiresAuth = true

	result := ValidatePromoEligibility(promo, baseContext())
	if result.Reason != ReasonLoginRequired {
		t.Fatalf("expected %s, got %+v", ReasonLoginRequired, result)
	}

	ctx := baseContext()
	ctx.Authenticated = true
	result = ValidatePromoEligibility(promo, ctx)
	if !result.Eligible {
		t.Fatalf("authenticated customer should pass, got %+v", result)
	}
}

func TestValidityWindow(t *testing.T) {
	t.Parallel()

	now := baseContext().Now
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	promo := basePromo()
	promo.ValidFrom = &future
	result := ValidatePromoEligibility(promo, baseContext())
	if result.Reason != ReasonNotYetValid {
		t.Fatalf("expected %s, got %+v", ReasonNotYetValid, result)
	}

	promo = basePromo()
	promo.ValidUntil = &past
	result = ValidatePromoEligibility(promo, baseContext())
	if result.Reason != ReasonExpired {
		t.Fatalf("expected %s, got %+v", ReasonExpired, result)
	}

	promo = basePromo()
	promo.ValidFrom = &past
	promo.ValidUntil = &future
	result = ValidatePromoEligibility(promo, baseContext())
	if !result.Eligible {
		t.Fatalf("inside window should be eligible, got %+v", result)
	}
}

func TestBelowMinimumUsesPreDiscountSubtotal(t *testing.T) {
	t.Parallel()

	promo := basePromo()
	promo.MinOrderSubtotal = dec("100")

	ctx := baseContext()
	ctx.CartSubtotal = dec("90")
	result := ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonBelowMinimum {
		t.Fatalf("expected %s, got %+v", ReasonBelowMinimum, result)
	}

	ctx.CartSubtotal = dec("100")
	result = ValidatePromoEligibility(promo, ctx)
	if !result.Eligible {
		t.Fatalf("exact minimum should pass, got %+v", result)
	}
}

func TestUsageLimit(t *testing.T) {
	t.Parallel()

	promo := basePromo()
	promo.UsageLimitTotal = 5
	promo.UsageCount = 5

	result := ValidatePromoEligibility(promo, baseContext())
	if result.Reason != ReasonUsageLimitReached {
		t.Fatalf("expected %s, got %+v", ReasonUsageLimitReached, result)
	}

	promo.UsageCount = 4
	result = ValidatePromoEligibility(promo, baseContext())
	if !result.Eligible {
		t.Fatalf("below limit should pass, got %+v", result)
	}

	// zero limit means unlimited
	promo.UsageLimitTotal = 0
	promo.UsageCount = 10000
	result = ValidatePromoEligibility(promo, baseContext())
	if !result.Eligible {
		t.Fatalf("unlimited promo should pass, got %+v", result)
	}
}

func TestOnePerCustomer(t *testing.T) {
	t.Parallel()

	promo := basePromo()
	promo.OnePerCustomer = true
	promo.UsedByCustomerIDs = []string{"cust-1", "cust-2"}

	ctx := baseContext()
	ctx.CustomerID = "cust-2"
	result := ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonAlreadyUsedByCustomer {
		t.Fatalf("expected %s, got %+v", ReasonAlreadyUsedByCustomer, result)
	}

	ctx.CustomerID = "cust-3"
	result = ValidatePromoEligibility(promo, ctx)
	if !result.Eligible {
		t.Fatalf("new customer should pass, got %+v", result)
	}

	// anonymous checkout cannot be matched against the used list
	ctx.CustomerID = ""
	result = ValidatePromoEligibility(promo, ctx)
	if !result.Eligible {
		t.Fatalf("anonymous customer should pass, got %+v", result)
	}
}

func TestReasonOrdering(t *testing.T) {
	t.Parallel()

	// every check fails; the first in the fixed order wins
	past := baseContext().Now.Add(-time.Hour)
	promo := PromoCode{
		Code:              "BROKEN",
		Active:            false,
		Discount:          PercentOfSubtotal{Percent: dec("10")},
		RequiresAuth:      true,
		MinOrderSubtotal:  dec("1000"),
		UsageLimitTotal:   1,
		UsageCount:        1,
		OnePerCustomer:    true,
		UsedByCustomerIDs: []string{"cust-1"},
		ValidUntil:        &past,
	}
	ctx := baseContext()
	ctx.CustomerID = "cust-1"

	result := ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonInactive {
		t.Fatalf("inactive must win, got %s", result.Reason)
	}

	promo.Active = true
	result = ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonLoginRequired {
		t.Fatalf("login required must come next, got %s", result.Reason)
	}

	ctx.Authenticated = true
	result = ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonExpired {
		t.Fatalf("expired must come before minimum, got %s", result.Reason)
	}

	promo.ValidUntil = nil
	result = ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonBelowMinimum {
		t.Fatalf("minimum must come before usage, got %s", result.Reason)
	}

	ctx.CartSubtotal = dec("1000")
	result = ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonUsageLimitReached {
		t.Fatalf("usage limit must come before per-customer, got %s", result.Reason)
	}

	promo.UsageLimitTotal = 0
	result = ValidatePromoEligibility(promo, ctx)
	if result.Reason != ReasonAlreadyUsedByCustomer {
		t.Fatalf("expected per-customer reason, got %s", result.Reason)
	}
}
