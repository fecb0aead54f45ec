package controllers

import (
	"time"

	"github.com/mleong/mangobox-backend/internal/orders"
	"github.com/mleong/mangobox-backend/internal/pricing"
	"github.com/mleong/mangobox-backend/internal/promos"
	"github.com/mleong/mangobox-backend/pkg/db/models"
)

// Money is rendered with two decimal places at the API boundary; internal
// arithmetic keeps full precision.

type productView struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	UnitPrice    string  `json:"unit_price"`
	UnitWeightKG string  `json:"unit_weight_kg"`
	Available    bool    `json:"available"`
	SortOrder    int     `json:"sort_order"`
}

func toProductView(p models.Product) productView {
	return productView{
		ID:           p.ID.String(),
		Slug:         p.Slug,
		Name:         p.Name,
		Description:  p.Description,
		UnitPrice:    p.UnitPrice.StringFixed(2),
		UnitWeightKG: p.UnitWeightKG.StringFixed(3),
		Available:    p.Available,
		SortOrder:    p.SortOrder,
	}
}

func toProductViews(list []models.Product) []productView {
	views := make([]productView, 0, len(list))
	for _, p := range list {
		views = append(views, toProductView(p))
	}
	return views
}

type promoView struct {
	ID                   string     `json:"id"`
	Code                 string     `json:"code"`
	Description          *string    `json:"description,omitempty"`
	Active               bool       `json:"active"`
	DiscountType         string     `json:"discount_type"`
	DiscountValue        string     `json:"discount_value"`
	EligibleProductSlugs []string   `json:"eligible_product_slugs"`
	MinOrderSubtotal     string     `json:"min_order_subtotal"`
	RequiresAuth         bool       `json:"requires_auth"`
	UsageLimitTotal      int        `json:"usage_limit_total"`
	UsageCount           int        `json:"usage_count"`
	OnePerCustomer       bool       `json:"one_per_customer"`
	ValidFrom            *time.Time `json:"valid_from,omitempty"`
	ValidUntil           *time.Time `json:"valid_until,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func toPromoView(p models.PromoCode) promoView {
	return promoView{
		ID:                   p.ID.String(),
		Code:                 p.Code,
		Description:          p.Description,
		Active:               p.Active,
		DiscountType:         string(p.DiscountType),
		DiscountValue:        p.DiscountValue.StringFixed(2),
		EligibleProductSlugs: append([]string{}, p.EligibleProductSlugs...),
		MinOrderSubtotal:     p.MinOrderSubtotal.StringFixed(2),
		RequiresAuth:         p.RequiresAuth,
		UsageLimitTotal:      p.UsageLimitTotal,
		UsageCount:           p.UsageCount,
		OnePerCustomer:       p.OnePerCustomer,
		ValidFrom:            p.ValidFrom,
		ValidUntil:           p.ValidUntil,
		CreatedAt:            p.CreatedAt,
	}
}

func toPromoViews(list []models.PromoCode) []promoView {
	views := make([]promoView, 0, len(list))
	for _, p := range list {
		views = append(views, toPromoView(p))
	}
	return views
}

type promoCheckView struct {
	Code          string  `json:"code"`
	Description   *string `json:"description,omitempty"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue string  `json:"discount_value"`
	Eligible      bool    `json:"eligible"`
	Reason        string  `json:"reason,omitempty"`
}

func toPromoCheckView(result promos.CheckResult) promoCheckView {
	return promoCheckView{
		Code:          result.Code,
		Description:   result.Description,
		DiscountType:  string(result.DiscountType),
		DiscountValue: result.DiscountValue.StringFixed(2),
		Eligible:      result.Eligible,
		Reason:        string(result.Reason),
	}
}

type quoteLineView struct {
	ProductSlug       string `json:"product_slug"`
	Quantity          int    `json:"quantity"`
	OriginalUnitPrice string `json:"original_unit_price"`
	AppliedUnitPrice  string `json:"applied_unit_price"`
	PerUnitDiscount   string `json:"per_unit_discount"`
	LineTotal         string `json:"line_total"`
	Discounted        bool   `json:"discounted"`
}

type appliedPromoView struct {
	Code           string `json:"code"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	AmountDeducted string `json:"amount_deducted"`
}

type quoteView struct {
	Lines                 []quoteLineView   `json:"lines"`
	SubtotalOriginal      string            `json:"subtotal_original"`
	TotalDiscount         string            `json:"total_discount"`
	SubtotalAfterDiscount string            `json:"subtotal_after_discount"`
	DeliveryFee           string            `json:"delivery_fee"`
	GrandTotal            string            `json:"grand_total"`
	AppliedPromo          *appliedPromoView `json:"applied_promo,omitempty"`
}

func toQuoteView(priced pricing.PricedOrder) quoteView {
	lines := make([]quoteLineView, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		lines = append(lines, quoteLineView{
			ProductSlug:       line.ProductID,
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice.StringFixed(2),
			AppliedUnitPrice:  line.AppliedUnitPrice.StringFixed(2),
			PerUnitDiscount:   line.PerUnitDiscount.StringFixed(2),
			LineTotal:         line.LineTotal.StringFixed(2),
			Discounted:        line.Discounted,
		})
	}

	view := quoteView{
		Lines:                 lines,
		SubtotalOriginal:      priced.SubtotalAtOriginalPrices.StringFixed(2),
		TotalDiscount:         priced.TotalDiscount.StringFixed(2),
		SubtotalAfterDiscount: priced.SubtotalAfterDiscount.StringFixed(2),
		DeliveryFee:           priced.DeliveryFee.StringFixed(2),
		GrandTotal:            priced.GrandTotal.StringFixed(2),
	}
	if priced.AppliedPromo != nil {
		view.AppliedPromo = &appliedPromoView{
			Code:           priced.AppliedPromo.Code,
			Type:           string(priced.AppliedPromo.Type),
			Value:          priced.AppliedPromo.Value.StringFixed(2),
			AmountDeducted: priced.AppliedPromo.AmountDeducted.StringFixed(2),
		}
	}
	return view
}

type orderLineView struct {
	ProductSlug       string `json:"product_slug"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	OriginalUnitPrice string `json:"original_unit_price"`
	AppliedUnitPrice  string `json:"applied_unit_price"`
	PerUnitDiscount   string `json:"per_unit_discount"`
	LineTotal         string `json:"line_total"`
	Discounted        bool   `json:"discounted"`
}

type orderView struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	DeliveryOptionID string  `json:"delivery_option_id"`
	DeliveryArea     *string `json:"delivery_area,omitempty"`
	DeliveryAddress  *string `json:"delivery_address,omitempty"`
	PaymentMethodID  string  `json:"payment_method_id"`

	Lines []orderLineView `json:"lines"`

	SubtotalOriginal      string            `json:"subtotal_original"`
	TotalDiscount         string            `json:"total_discount"`
	SubtotalAfterDiscount string            `json:"subtotal_after_discount"`
	DeliveryFee           string            `json:"delivery_fee"`
	GrandTotal            string            `json:"grand_total"`
	AppliedPromo          *appliedPromoView `json:"applied_promo,omitempty"`

	CashReceived   string `json:"cash_received"`
	OnlineReceived string `json:"online_received"`
	Balance        string `json:"balance"`
	Paid           bool   `json:"paid"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toOrderView(order *models.Order) orderView {
	lines := make([]orderLineView, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		lines = append(lines, orderLineView{
			ProductSlug:       item.ProductSlug,
			Name:              item.Name,
			Quantity:          item.Quantity,
			OriginalUnitPrice: item.OriginalUnitPrice.StringFixed(2),
			AppliedUnitPrice:  item.AppliedUnitPrice.StringFixed(2),
			PerUnitDiscount:   item.PerUnitDiscount.StringFixed(2),
			LineTotal:         item.LineTotal.StringFixed(2),
			Discounted:        item.Discounted,
		})
	}

	view := orderView{
		ID:                    order.ID.String(),
		Number:                order.Number,
		Status:                string(order.Status),
		CustomerName:          order.CustomerName,
		CustomerPhone:         order.CustomerPhone,
		DeliveryOptionID:      order.DeliveryOptionID,
		DeliveryArea:          order.DeliveryArea,
		DeliveryAddress:       order.DeliveryAddress,
		PaymentMethodID:       order.PaymentMethodID,
		Lines:                 lines,
		SubtotalOriginal:      order.SubtotalOriginal.StringFixed(2),
		TotalDiscount:         order.TotalDiscount.StringFixed(2),
		SubtotalAfterDiscount: order.SubtotalAfterDiscount.StringFixed(2),
		DeliveryFee:           order.DeliveryFee.StringFixed(2),
		GrandTotal:            order.GrandTotal.StringFixed(2),
		CashReceived:          order.CashReceived.StringFixed(2),
		OnlineReceived:        order.OnlineReceived.StringFixed(2),
		Balance:               order.Balance.StringFixed(2),
		Paid:                  order.Paid,
		Notes:                 order.Notes,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	if order.AppliedPromo != nil {
		view.AppliedPromo = &appliedPromoView{
			Code:           order.AppliedPromo.Code,
			Type:           string(order.AppliedPromo.Type),
			Value:          order.AppliedPromo.DiscountValue.StringFixed(2),
			AmountDeducted: order.AppliedPromo.AmountDeducted.StringFixed(2),
		}
	}
	return view
}

type orderListView struct {
	Orders     []orderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toOrderListView(list *orders.OrderList) orderListView {
	views := make([]orderView, 0, len(list.Orders))
	for i := range list.Orders {
		views = append(views, toOrderView(&list.Orders[i]))
	}
	return orderListView{Orders: views, NextCursor: list.NextCursor}
}

type deliveryOptionView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	BaseFee   string `json:"base_fee"`
	Pickup    bool   `json:"pickup"`
	IsDefault bool   `json:"is_default"`
	SortOrder int    `json:"sort_order"`
}

func toDeliveryOptionView(opt models.DeliveryOption) deliveryOptionView {
	return deliveryOptionView{
		ID:        opt.ID,
		Label:     opt.Label,
		BaseFee:   opt.BaseFee.StringFixed(2),
		Pickup:    opt.Pickup,
		IsDefault: opt.IsDefault,
		SortOrder: opt.SortOrder,
	}
}

func toDeliveryOptionViews(list []models.DeliveryOption) []deliveryOptionView {
	views := make([]deliveryOptionView, 0, len(list))
	for _, opt := range list {
		views = append(views, toDeliveryOptionView(opt))
	}
	return views
}

type paymentMethodView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Enabled   bool   `json:"enabled"`
	SortOrder int    `json:"sort_order"`
}

func toPaymentMethodViews(list []models.PaymentMethod) []paymentMethodView {
	views := make([]paymentMethodView, 0, len(list))
	for _, method := range list {
		views = append(views, paymentMethodView{
			ID:        method.ID,
			Label:     method.Label,
			Enabled:   method.Enabled,
			SortOrder: method.SortOrder,
		})
	}
	return views
}

type areaFeeView struct {
	ID               int64  `json:"id"`
	Area             string `json:"area"`
	DeliveryOptionID string `json:"delivery_option_id"`
	Fee              string `json:"fee"`
}

func toAreaFeeView(fee models.DeliveryAreaFee) areaFeeView {
	return areaFeeView{
		ID:               fee.ID,
		Area:             fee.Area,
		DeliveryOptionID: fee.DeliveryOptionID,
		Fee:              fee.Fee.StringFixed(2),
	}
}

func toAreaFeeViews(list []models.DeliveryAreaFee) []areaFeeView {
	views := make([]areaFeeView, 0, len(list))
	for _, fee := range list {
		views = append(views, toAreaFeeView(fee))
	}
	return views
}
