package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/api/validators"
	"github.com/mleong/mangobox-backend/internal/settings"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
)

// DeliveryOptions lists the delivery methods offered at checkout.
func DeliveryOptions(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		options, err := svc.DeliveryOptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toDeliveryOptionViews(options))
	}
}

// PaymentMethods lists the manual payment channels.
func PaymentMethods(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		methods, err := svc.PaymentMethods(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPaymentMethodViews(methods))
	}
}

func AdminAreaFees(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fees, err := svc.AreaFees(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAreaFeeViews(fees))
	}
}

type areaFeeRequest struct {
	Area             string `json:"area" validate:"required"`
	DeliveryOptionID string `json:"delivery_option_id" validate:"required"`
	Fee              string `json:"fee" validate:"required"`
}

func AdminSetAreaFee(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload areaFeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fee, err := parseMoney(payload.Fee, "fee")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SetAreaFee(r.Context(), settings.AreaFeeInput{
			Area:             validators.SanitizeString(payload.Area, 64),
			DeliveryOptionID: payload.DeliveryOptionID,
			Fee:              fee,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toAreaFeeView(*result))
	}
}

func AdminRemoveAreaFee(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(chi.URLParam(r, "feeId"))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fee id"))
			return
		}

		if err := svc.RemoveAreaFee(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

type deliveryOptionRequest struct {
	Label     string `json:"label" validate:"required"`
	BaseFee   string `json:"base_fee" validate:"required"`
	IsDefault bool   `json:"is_default,omitempty"`
	SortOrder int    `json:"sort_order,omitempty" validate:"omitempty,min=0"`
}

func AdminUpdateDeliveryOption(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "optionId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delivery option id is required"))
			return
		}

		var payload deliveryOptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fee, err := parseMoney(payload.BaseFee, "base_fee")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		option, err := svc.UpdateDeliveryOption(r.Context(), id, settings.DeliveryOptionInput{
			Label:     validators.SanitizeString(payload.Label, 64),
			BaseFee:   fee,
			IsDefault: payload.IsDefault,
			SortOrder: payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toDeliveryOptionView(*option))
	}
}
