package enums

import "fmt"

// DiscountType identifies how a promo code reduces the order total.
type DiscountType string

const (
	// DiscountPercentOfSubtotal takes a percentage off the cart subtotal.
	DiscountPercentOfSubtotal DiscountType = "percent_of_subtotal"
	// DiscountFixedAmountOfSubtotal takes a flat amount off the cart subtotal.
	DiscountFixedAmountOfSubtotal DiscountType = "fixed_amount_of_subtotal"
	// DiscountFixedAmountPerEligibleUnit takes a flat amount off each unit of
	// the promo's eligible products.
	DiscountFixedAmountPerEligibleUnit DiscountType = "fixed_amount_per_eligible_unit"
)

var validDiscountTypes = []DiscountType{
	DiscountPercentOfSubtotal,
	DiscountFixedAmountOfSubtotal,
	DiscountFixedAmountPerEligibleUnit,
}

// String implements fmt.Stringer.
func (d DiscountType) String() string {
	return string(d)
}

// IsValid reports whether the discount type is recognized.
func (d DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountType converts a raw string into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}
