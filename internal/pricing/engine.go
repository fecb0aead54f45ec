// Package pricing computes order totals for the storefront checkout and the
// admin order editor. All functions are pure: no clocks, no storage, no
// globals. Amounts are computed at full decimal precision and rounded
// half-up to two decimal places only on the returned values.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/enums"
)

// Product is the engine's view of a catalog entry.
type Product struct {
	ID           string
	UnitPrice    decimal.Decimal
	UnitWeightKG decimal.Decimal
	Available    bool
}

// CartLine is one requested product with a quantity.
type CartLine struct {
	ProductID string
	Quantity  int
}

// PricedLine is a cart line after pricing.
type PricedLine struct {
	ProductID         string
	Quantity          int
	OriginalUnitPrice decimal.Decimal
	AppliedUnitPrice  decimal.Decimal
	PerUnitDiscount   decimal.Decimal
	LineTotal         decimal.Decimal
	Discounted        bool
}

// AppliedPromo summarizes the promo that actually reduced the order.
type AppliedPromo struct {
	Code           string
	Type           enums.DiscountType
	Value          decimal.Decimal
	AmountDeducted decimal.Decimal
}

// PricedOrder is the full pricing result.
type PricedOrder struct {
	Lines                    []PricedLine
	SubtotalAtOriginalPrices decimal.Decimal
	TotalDiscount            decimal.Decimal
	SubtotalAfterDiscount    decimal.Decimal
	DeliveryFee              decimal.Decimal
	GrandTotal               decimal.Decimal
	AppliedPromo             *AppliedPromo
}

// PriceCart prices the cart against the catalog with an optional promo. Lines
// with a non-positive quantity, an unknown product, or an unavailable product
// are dropped silently; callers that need strictness validate before calling.
// The delivery fee is an input; resolving it from the chosen method and area
// is the settings service's job. PriceCart never fails: the worst case is an
// empty order at zero.
func PriceCart(lines []CartLine, catalog []Product, promo *PromoCode, deliveryFee decimal.Decimal) PricedOrder {
	byID := make(map[string]Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	var perUnit *FixedAmountPerEligibleUnit
	if promo != nil && promo.Active {
		if d, ok := promo.Discount.(FixedAmountPerEligibleUnit); ok {
			perUnit = &d
		}
	}

	priced := make([]PricedLine, 0, len(lines))
	subtotalOriginal := decimal.Zero
	subtotalAfterLines := decimal.Zero

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if line.Quantity <= 0 || !ok || !product.Available {
			continue
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		original := product.UnitPrice
		applied := original
		perUnitDiscount := decimal.Zero

		if perUnit != nil && perUnit.eligible(product.ID) {
			perUnitDiscount = decimal.Min(perUnit.AmountPerUnit, original)
			applied = original.Sub(perUnitDiscount)
		}

		priced = append(priced, PricedLine{
			ProductID:         product.ID,
			Quantity:          line.Quantity,
			OriginalUnitPrice: original,
			AppliedUnitPrice:  applied,
			PerUnitDiscount:   perUnitDiscount,
			LineTotal:         applied.Mul(qty),
			Discounted:        perUnitDiscount.IsPositive(),
		})

		subtotalOriginal = subtotalOriginal.Add(original.Mul(qty))
		subtotalAfterLines = subtotalAfterLines.Add(applied.Mul(qty))
	}

	lineDeduction := subtotalOriginal.Sub(subtotalAfterLines)
	orderDeduction := decimal.Zero

	if promo != nil && promo.Active {
		switch d := promo.Discount.(type) {
		case PercentOfSubtotal:
			raw := subtotalAfterLines.Mul(d.Percent).Div(decimal.NewFromInt(100))
			orderDeduction = decimal.Min(raw, subtotalAfterLines)
		case FixedAmountOfSubtotal:
			if len(priced) > 0 {
				orderDeduction = decimal.Min(d.Amount, subtotalAfterLines)
			}
		}
	}

	subtotalAfterDiscount := subtotalAfterLines.Sub(orderDeduction)
	totalDiscount := lineDeduction.Add(orderDeduction)

	var applied *AppliedPromo
	if promo != nil && promo.Active && totalDiscount.IsPositive() {
		applied = &AppliedPromo{
			Code:           promo.Code,
			Type:           promo.Discount.Type(),
			Value:          promo.Value(),
			AmountDeducted: totalDiscount,
		}
	}

	return finalize(priced, subtotalOriginal, totalDiscount, subtotalAfterDiscount, deliveryFee, applied)
}

// RecomputeTotals re-derives order totals from already-persisted lines, which
// the admin editor may have changed. Per-eligible-unit deductions come back
// out of the line prices themselves; order-level promos keep their stored
// deducted amount, re-capped at the current line subtotal.
func RecomputeTotals(lines []PricedLine, promo *AppliedPromo, deliveryFee decimal.Decimal) PricedOrder {
	priced := make([]PricedLine, 0, len(lines))
	subtotalOriginal := decimal.Zero
	subtotalAfterLines := decimal.Zero

	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		perUnitDiscount := decimal.Max(line.OriginalUnitPrice.Sub(line.AppliedUnitPrice), decimal.Zero)

		priced = append(priced, PricedLine{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice,
			AppliedUnitPrice:  line.AppliedUnitPrice,
			PerUnitDiscount:   perUnitDiscount,
			LineTotal:         line.AppliedUnitPrice.Mul(qty),
			Discounted:        perUnitDiscount.IsPositive(),
		})

		subtotalOriginal = subtotalOriginal.Add(line.OriginalUnitPrice.Mul(qty))
		subtotalAfterLines = subtotalAfterLines.Add(line.AppliedUnitPrice.Mul(qty))
	}

	lineDeduction := subtotalOriginal.Sub(subtotalAfterLines)
	orderDeduction := decimal.Zero
	if promo != nil && promo.Type != enums.DiscountFixedAmountPerEligibleUnit {
		orderDeduction = decimal.Min(promo.AmountDeducted, subtotalAfterLines)
	}

	subtotalAfterDiscount := subtotalAfterLines.Sub(orderDeduction)
	totalDiscount := lineDeduction.Add(orderDeduction)

	var applied *AppliedPromo
	if promo != nil && totalDiscount.IsPositive() {
		applied = &AppliedPromo{
			Code:           promo.Code,
			Type:           promo.Type,
			Value:          promo.Value,
			AmountDeducted: totalDiscount,
		}
	}

	return finalize(priced, subtotalOriginal, totalDiscount, subtotalAfterDiscount, deliveryFee, applied)
}

// finalize rounds every outgoing amount to two decimal places, half-up.
func finalize(lines []PricedLine, subtotalOriginal, totalDiscount, subtotalAfterDiscount, deliveryFee decimal.Decimal, promo *AppliedPromo) PricedOrder {
	for i := range lines {
		lines[i].OriginalUnitPrice = round2(lines[i].OriginalUnitPrice)
		lines[i].AppliedUnitPrice = round2(lines[i].AppliedUnitPrice)
		lines[i].PerUnitDiscount = round2(lines[i].PerUnitDiscount)
		lines[i].LineTotal = round2(lines[i].LineTotal)
	}
	if promo != nil {
		promo.AmountDeducted = round2(promo.AmountDeducted)
	}

	return PricedOrder{
		Lines:                    lines,
		SubtotalAtOriginalPrices: round2(subtotalOriginal),
		TotalDiscount:            round2(totalDiscount),
		SubtotalAfterDiscount:    round2(subtotalAfterDiscount),
		DeliveryFee:              round2(deliveryFee),
		GrandTotal:               round2(subtotalAfterDiscount.Add(deliveryFee)),
		AppliedPromo:             promo,
	}
}

// round2 rounds half away from zero at two decimal places. Amounts are never
// negative here, so this is plain half-up.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
