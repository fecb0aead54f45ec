package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/api/validators"
	"github.com/mleong/mangobox-backend/internal/orders"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/pagination"
)

// AdminListOrders pages through orders newest first.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := buildOrderFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderListView(list))
	}
}

func AdminGetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderView(order))
	}
}

type adminLineRequest struct {
	ProductSlug       string `json:"product_slug" validate:"required"`
	Name              string `json:"name" validate:"required"`
	Quantity          int    `json:"quantity" validate:"min=0"`
	OriginalUnitPrice string `json:"original_unit_price" validate:"required"`
	AppliedUnitPrice  string `json:"applied_unit_price" validate:"required"`
}

type adminUpdateOrderRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone" validate:"required"`

	Lines       []adminLineRequest `json:"lines" validate:"required,dive"`
	DeliveryFee string             `json:"delivery_fee" validate:"required"`

	DeliveryOptionID string  `json:"delivery_option_id" validate:"required"`
	DeliveryArea     *string `json:"delivery_area,omitempty"`
	DeliveryAddress  *string `json:"delivery_address,omitempty"`
	PaymentMethodID  string  `json:"payment_method_id" validate:"required"`
	Notes            *string `json:"notes,omitempty"`
}

// AdminUpdateOrder edits an order's customer info and lines; totals are
// recomputed server side.
func AdminUpdateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminUpdateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderView(order))
	}
}

func (req adminUpdateOrderRequest) toInput() (orders.AdminUpdateInput, error) {
	fee, err := parseMoney(req.DeliveryFee, "delivery_fee")
	if err != nil {
		return orders.AdminUpdateInput{}, err
	}

	lines := make([]orders.LineUpdate, 0, len(req.Lines))
	for i, line := range req.Lines {
		original, err := parseMoney(line.OriginalUnitPrice, fmt.Sprintf("lines[%d].original_unit_price", i))
		if err != nil {
			return orders.AdminUpdateInput{}, err
		}
		applied, err := parseMoney(line.AppliedUnitPrice, fmt.Sprintf("lines[%d].applied_unit_price", i))
		if err != nil {
			return orders.AdminUpdateInput{}, err
		}
		lines = append(lines, orders.LineUpdate{
			ProductSlug:       line.ProductSlug,
			Name:              validators.SanitizeString(line.Name, 128),
			Quantity:          line.Quantity,
			OriginalUnitPrice: original,
			AppliedUnitPrice:  applied,
		})
	}

	return orders.AdminUpdateInput{
		CustomerName:     validators.SanitizeString(req.CustomerName, 128),
		CustomerPhone:    validators.SanitizeString(req.CustomerPhone, 32),
		Lines:            lines,
		DeliveryFee:      fee,
		DeliveryOptionID: req.DeliveryOptionID,
		DeliveryArea:     req.DeliveryArea,
		DeliveryAddress:  req.DeliveryAddress,
		PaymentMethodID:  req.PaymentMethodID,
		Notes:            req.Notes,
	}, nil
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderView(order))
	}
}

type paymentRequest struct {
	CashReceived   string `json:"cash_received,omitempty"`
	OnlineReceived string `json:"online_received,omitempty"`
}

func AdminRecordPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.PaymentInput{}
		if strings.TrimSpace(payload.CashReceived) != "" {
			input.CashReceived, err = parseMoney(payload.CashReceived, "cash_received")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if strings.TrimSpace(payload.OnlineReceived) != "" {
			input.OnlineReceived, err = parseMoney(payload.OnlineReceived, "online_received")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.RecordPayment(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderView(order))
	}
}

func AdminDeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parsePathUUID(r, "orderId")
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

// AdminExportOrders streams the filtered orders as a CSV download.
func AdminExportOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := buildOrderFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.ExportCSV(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("orders-%s.csv", time.Now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func buildOrderFilter(r *http.Request) (orders.ListFilter, error) {
	filter := orders.ListFilter{}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	paid, err := validators.ParseQueryBool(r, "paid")
	if err != nil {
		return orders.ListFilter{}, err
	}
	filter.Paid = paid

	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return orders.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from filter")
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return orders.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to filter")
		}
		filter.To = &to
	}

	return filter, nil
}
