package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/api/validators"
	"github.com/mleong/mangobox-backend/internal/catalog"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
)

// StorefrontProducts lists the boxes customers can order right now.
func StorefrontProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.Storefront(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductViews(products))
	}
}

// AdminListProducts returns the full catalog including unavailable boxes.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductViews(products))
	}
}

func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductView(*product))
	}
}

func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProductView(*product))
	}
}

func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductView(*product))
	}
}

func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "productId")
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

type productRequest struct {
	Slug         string  `json:"slug" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Description  *string `json:"description,omitempty"`
	UnitPrice    string  `json:"unit_price" validate:"required"`
	UnitWeightKG string  `json:"unit_weight_kg,omitempty"`
	Available    *bool   `json:"available,omitempty"`
	SortOrder    int     `json:"sort_order,omitempty" validate:"omitempty,min=0"`
}

func (req productRequest) toInput() (catalog.ProductInput, error) {
	price, err := parseMoney(req.UnitPrice, "unit_price")
	if err != nil {
		return catalog.ProductInput{}, err
	}

	weight := decimal.Zero
	if strings.TrimSpace(req.UnitWeightKG) != "" {
		weight, err = parseMoney(req.UnitWeightKG, "unit_weight_kg")
		if err != nil {
			return catalog.ProductInput{}, err
		}
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	return catalog.ProductInput{
		Slug:         strings.ToLower(validators.SanitizeString(req.Slug, 64)),
		Name:         validators.SanitizeString(req.Name, 128),
		Description:  req.Description,
		UnitPrice:    price,
		UnitWeightKG: weight,
		Available:    available,
		SortOrder:    req.SortOrder,
	}, nil
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{"field": field})
	}
	if value.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func parsePathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}
