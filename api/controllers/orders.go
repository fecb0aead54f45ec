package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/api/validators"
	"github.com/mleong/mangobox-backend/internal/orders"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ProductSlug string `json:"product_slug" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required"`
}

type quoteRequest struct {
	Lines            []checkoutLineRequest `json:"lines" validate:"required,dive"`
	PromoCode        string                `json:"promo_code,omitempty"`
	DeliveryOptionID string                `json:"delivery_option_id" validate:"required"`
	DeliveryArea     *string               `json:"delivery_area,omitempty"`
	CustomerID       string                `json:"customer_id,omitempty"`
}

// Quote previews cart pricing without persisting anything.
func Quote(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := validators.SanitizeString(payload.CustomerID, 64)
		priced, err := svc.Quote(r.Context(), orders.QuoteInput{
			Lines:            toLineInputs(payload.Lines),
			PromoCode:        payload.PromoCode,
			DeliveryOptionID: payload.DeliveryOptionID,
			DeliveryArea:     payload.DeliveryArea,
			Authenticated:    customerID != "",
			CustomerID:       customerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toQuoteView(*priced))
	}
}

type placeOrderRequest struct {
	CustomerID    string `json:"customer_id,omitempty"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone" validate:"required"`

	Lines     []checkoutLineRequest `json:"lines" validate:"required,dive"`
	PromoCode string                `json:"promo_code,omitempty"`

	DeliveryOptionID string  `json:"delivery_option_id" validate:"required"`
	DeliveryArea     *string `json:"delivery_area,omitempty"`
	DeliveryAddress  *string `json:"delivery_address,omitempty"`
	PaymentMethodID  string  `json:"payment_method_id" validate:"required"`
	Notes            *string `json:"notes,omitempty"`
}

// PlaceOrder runs checkout: price, persist, then notify.
func PlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := validators.SanitizeString(payload.CustomerID, 64)
		input := orders.PlaceOrderInput{
			CustomerName:     validators.SanitizeString(payload.CustomerName, 128),
			CustomerPhone:    validators.SanitizeString(payload.CustomerPhone, 32),
			Lines:            toLineInputs(payload.Lines),
			PromoCode:        payload.PromoCode,
			DeliveryOptionID: payload.DeliveryOptionID,
			DeliveryArea:     payload.DeliveryArea,
			DeliveryAddress:  payload.DeliveryAddress,
			PaymentMethodID:  payload.PaymentMethodID,
			Notes:            payload.Notes,
			Authenticated:    customerID != "",
		}
		if customerID != "" {
			input.CustomerID = &customerID
		}

		order, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderView(order))
	}
}

// TrackOrder returns one order by its public number.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := strings.TrimSpace(chi.URLParam(r, "number"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		order, err := svc.Track(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderView(order))
	}
}

func toLineInputs(lines []checkoutLineRequest) []orders.LineInput {
	inputs := make([]orders.LineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, orders.LineInput{
			ProductSlug: line.ProductSlug,
			Quantity:    line.Quantity,
		})
	}
	return inputs
}
