package notify

import (
	"fmt"
	"strings"

	"github.com/mleong/mangobox-backend/pkg/db/models"
)

// OrderPlacedMessage renders the Telegram notification for a freshly placed
// order. Every dynamic value is escaped for MarkdownV2.
func OrderPlacedMessage(order *models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*New order %s*\n", EscapeMarkdownV2(order.Number))
	fmt.Fprintf(&b, "%s \\| %s\n", EscapeMarkdownV2(order.CustomerName), EscapeMarkdownV2(order.CustomerPhone))

	b.WriteString("\n")
	for _, item := range order.LineItems {
		fmt.Fprintf(&b, "%d x %s \\= RM%s\n",
			item.Quantity,
			EscapeMarkdownV2(item.Name),
			EscapeMarkdownV2(item.LineTotal.StringFixed(2)),
		)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: RM%s\n", EscapeMarkdownV2(order.SubtotalOriginal.StringFixed(2)))
	if order.AppliedPromo != nil {
		fmt.Fprintf(&b, "Promo %s: \\-RM%s\n",
			EscapeMarkdownV2(order.AppliedPromo.Code),
			EscapeMarkdownV2(order.AppliedPromo.AmountDeducted.StringFixed(2)),
		)
	}
	fmt.Fprintf(&b, "Delivery \\(%s\\): RM%s\n",
		EscapeMarkdownV2(order.DeliveryOptionID),
		EscapeMarkdownV2(order.DeliveryFee.StringFixed(2)),
	)
	fmt.Fprintf(&b, "*Total: RM%s*\n", EscapeMarkdownV2(order.GrandTotal.StringFixed(2)))

	if order.DeliveryArea != nil && strings.TrimSpace(*order.DeliveryArea) != "" {
		fmt.Fprintf(&b, "\nArea: %s\n", EscapeMarkdownV2(*order.DeliveryArea))
	}
	if order.DeliveryAddress != nil && strings.TrimSpace(*order.DeliveryAddress) != "" {
		fmt.Fprintf(&b, "Address: %s\n", EscapeMarkdownV2(*order.DeliveryAddress))
	}
	fmt.Fprintf(&b, "Payment: %s", EscapeMarkdownV2(order.PaymentMethodID))
	if order.Notes != nil && strings.TrimSpace(*order.Notes) != "" {
		fmt.Fprintf(&b, "\nNotes: %s", EscapeMarkdownV2(*order.Notes))
	}

	return b.String()
}
