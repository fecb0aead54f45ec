package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/api/validators"
	"github.com/mleong/mangobox-backend/internal/promos"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
)

// PromoCheck tells the storefront whether a code could apply to the cart
// before the customer commits to checkout.
func PromoCheck(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo service unavailable"))
			return
		}

		var payload promoCheckRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal := decimal.Zero
		if strings.TrimSpace(payload.CartSubtotal) != "" {
			var err error
			subtotal, err = parseMoney(payload.CartSubtotal, "cart_subtotal")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		customerID := validators.SanitizeString(payload.CustomerID, 64)
		result, err := svc.Check(r.Context(), promos.CheckInput{
			Code:          payload.Code,
			CartSubtotal:  subtotal,
			Authenticated: customerID != "",
			CustomerID:    customerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPromoCheckView(*result))
	}
}

type promoCheckRequest struct {
	Code         string `json:"code" validate:"required"`
	CartSubtotal string `json:"cart_subtotal,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
}

func AdminListPromos(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPromoViews(list))
	}
}

func AdminGetPromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "promoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPromoView(*promo))
	}
}

func AdminCreatePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload promoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toPromoView(*promo))
	}
}

func AdminUpdatePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "promoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload promoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPromoView(*promo))
	}
}

func AdminDeletePromo(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "promoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

type promoRequest struct {
	Code                 string   `json:"code" validate:"required"`
	Description          *string  `json:"description,omitempty"`
	Active               *bool    `json:"active,omitempty"`
	DiscountType         string   `json:"discount_type" validate:"required"`
	DiscountValue        string   `json:"discount_value" validate:"required"`
	EligibleProductSlugs []string `json:"eligible_product_slugs,omitempty"`
	MinOrderSubtotal     string   `json:"min_order_subtotal,omitempty"`
	RequiresAuth         bool     `json:"requires_auth,omitempty"`
	UsageLimitTotal      int      `json:"usage_limit_total,omitempty" validate:"omitempty,min=0"`
	OnePerCustomer       bool     `json:"one_per_customer,omitempty"`
	ValidFrom            *string  `json:"valid_from,omitempty"`
	ValidUntil           *string  `json:"valid_until,omitempty"`
}

func (req promoRequest) toInput() (promos.PromoInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(req.DiscountType))
	if err != nil {
		return promos.PromoInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}

	value, err := parseMoney(req.DiscountValue, "discount_value")
	if err != nil {
		return promos.PromoInput{}, err
	}

	minSubtotal := decimal.Zero
	if strings.TrimSpace(req.MinOrderSubtotal) != "" {
		minSubtotal, err = parseMoney(req.MinOrderSubtotal, "min_order_subtotal")
		if err != nil {
			return promos.PromoInput{}, err
		}
	}

	validFrom, err := parseTimestamp(req.ValidFrom, "valid_from")
	if err != nil {
		return promos.PromoInput{}, err
	}
	validUntil, err := parseTimestamp(req.ValidUntil, "valid_until")
	if err != nil {
		return promos.PromoInput{}, err
	}

	slugs := make([]string, 0, len(req.EligibleProductSlugs))
	for _, slug := range req.EligibleProductSlugs {
		trimmed := strings.ToLower(strings.TrimSpace(slug))
		if trimmed != "" {
			slugs = append(slugs, trimmed)
		}
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return promos.PromoInput{
		Code:                 req.Code,
		Description:          req.Description,
		Active:               active,
		DiscountType:         discountType,
		DiscountValue:        value,
		EligibleProductSlugs: slugs,
		MinOrderSubtotal:     minSubtotal,
		RequiresAuth:         req.RequiresAuth,
		UsageLimitTotal:      req.UsageLimitTotal,
		OnePerCustomer:       req.OnePerCustomer,
		ValidFrom:            validFrom,
		ValidUntil:           validUntil,
	}, nil
}

func parseTimestamp(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timestamp").WithDetails(map[string]any{"field": field})
	}
	return &parsed, nil
}
