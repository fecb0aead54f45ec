package orders

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

var exportHeader = []string{
	"number", "created_at", "status", "customer_name", "customer_phone",
	"delivery_option", "delivery_area", "payment_method",
	"subtotal", "discount", "promo_code", "delivery_fee", "grand_total",
	"cash_received", "online_received", "balance", "paid", "items",
}

// ExportCSV renders the filtered orders as a CSV document.
func (s *service) ExportCSV(ctx context.Context, filter ListFilter) ([]byte, error) {
	rows, err := s.repo.ListBetween(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading orders for export")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing export header")
	}

	for _, order := range rows {
		area := ""
		if order.DeliveryArea != nil {
			area = *order.DeliveryArea
		}
		promoCode := ""
		if order.AppliedPromo != nil {
			promoCode = order.AppliedPromo.Code
		}

		items := ""
		for i, item := range order.LineItems {
			if i > 0 {
				items += "; "
			}
			items += strconv.Itoa(item.Quantity) + "x " + item.Name
		}

		record := []string{
			order.Number,
			order.CreatedAt.UTC().Format(time.RFC3339),
			string(order.Status),
			order.CustomerName,
			order.CustomerPhone,
			order.DeliveryOptionID,
			area,
			order.PaymentMethodID,
			order.SubtotalOriginal.StringFixed(2),
			order.TotalDiscount.StringFixed(2),
			promoCode,
			order.DeliveryFee.StringFixed(2),
			order.GrandTotal.StringFixed(2),
			order.CashReceived.StringFixed(2),
			order.OnlineReceived.StringFixed(2),
			order.Balance.StringFixed(2),
			strconv.FormatBool(order.Paid),
			items,
		}
		if err := writer.Write(record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing export row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flushing export")
	}
	return buf.Bytes(), nil
}
