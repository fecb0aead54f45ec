package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/internal/notify"
	"github.com/mleong/mangobox-backend/internal/pricing"
	"github.com/mleong/mangobox-backend/internal/promos"
	"github.com/mleong/mangobox-backend/pkg/db"
	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/metrics"
	"github.com/mleong/mangobox-backend/pkg/pagination"
	"github.com/mleong/mangobox-backend/pkg/types"
)

const numberAttempts = 3

// paidTolerance absorbs rounding slack when deciding whether an order is
// settled.
var paidTolerance = decimal.RequireFromString("0.009")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogProvider interface {
	List(ctx context.Context) ([]models.Product, error)
	PricingCatalog(ctx context.Context) ([]pricing.Product, error)
}

type promoStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	RecordUsage(ctx context.Context, promoID uuid.UUID, customerID *string) error
}

type feeResolver interface {
	ResolveDeliveryFee(ctx context.Context, optionID string, area *string) (decimal.Decimal, error)
	RequireEnabledPaymentMethod(ctx context.Context, id string) error
}

type notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// Service defines the order operations for the storefront and the admin
// surface.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*pricing.PricedOrder, error)
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Track(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	RecordPayment(ctx context.Context, id uuid.UUID, input PaymentInput) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExportCSV(ctx context.Context, filter ListFilter) ([]byte, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	catalog  catalogProvider
	promos   promoStore
	settings feeResolver
	notify   notifier
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the order service. The notifier and metrics are optional;
// everything else is required.
func NewService(
	repo Repository,
	tx txRunner,
	catalog catalogProvider,
	promoRepo promoStore,
	settings feeResolver,
	notifyClient notifier,
	orderMetrics *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if promoRepo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		catalog:  catalog,
		promos:   promoRepo,
		settings: settings,
		notify:   notifyClient,
		metrics:  orderMetrics,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Quote prices the cart exactly as PlaceOrder would, without persisting.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*pricing.PricedOrder, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	catalog, err := s.catalog.PricingCatalog(ctx)
	if err != nil {
		return nil, err
	}
	cartLines := toCartLines(input.Lines)

	promo, err := s.resolvePromo(ctx, input.PromoCode, cartLines, catalog, input.Authenticated, input.CustomerID)
	if err != nil {
		return nil, err
	}

	fee, err := s.settings.ResolveDeliveryFee(ctx, input.DeliveryOptionID, input.DeliveryArea)
	if err != nil {
		return nil, err
	}

	priced := pricing.PriceCart(cartLines, catalog, promo, fee)
	return &priced, nil
}

// PlaceOrder runs the checkout pipeline: validate, price, persist, then burn
// the promo usage and notify once the order is durable.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	started := s.now()

	order, err := s.placeOrder(ctx, input)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected(string(typed.Code()))
		} else {
			s.metrics.IncRejected("internal")
		}
		s.metrics.ObservePlaceDuration("rejected", s.now().Sub(started))
		return nil, err
	}

	s.metrics.IncPlaced(order.DeliveryOptionID)
	s.metrics.ObservePlaceDuration("placed", s.now().Sub(started))
	return order, nil
}

func (s *service) placeOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrderInput(input); err != nil {
		return nil, err
	}
	if err := s.settings.RequireEnabledPaymentMethod(ctx, input.PaymentMethodID); err != nil {
		return nil, err
	}

	catalog, err := s.catalog.PricingCatalog(ctx)
	if err != nil {
		return nil, err
	}
	cartLines := toCartLines(input.Lines)

	var promoModel *models.PromoCode
	var promo *pricing.PromoCode
	if promos.CanonicalCode(input.PromoCode) != "" {
		promoModel, err = s.loadPromo(ctx, input.PromoCode)
		if err != nil {
			return nil, err
		}
		customerID := ""
		if input.CustomerID != nil {
			customerID = *input.CustomerID
		}
		engine := promos.ToPricing(promoModel)
		eligibility := pricing.ValidatePromoEligibility(engine, pricing.EligibilityContext{
			CartSubtotal:  preDiscountSubtotal(cartLines, catalog),
			Authenticated: input.Authenticated,
			CustomerID:    customerID,
			Now:           s.now(),
		})
		if !eligibility.Eligible {
			return nil, pkgerrors.New(pkgerrors.CodePromoIneligible, "promo code cannot be applied").
				WithDetails(map[string]any{"reason": string(eligibility.Reason), "code": engine.Code})
		}
		promo = &engine
	}

	fee, err := s.settings.ResolveDeliveryFee(ctx, input.DeliveryOptionID, input.DeliveryArea)
	if err != nil {
		return nil, err
	}

	priced := pricing.PriceCart(cartLines, catalog, promo, fee)
	if len(priced.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no purchasable items in cart")
	}

	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog")
	}

	order := buildOrder(input, priced, products)

	if err := s.persistOrder(ctx, order); err != nil {
		return nil, err
	}

	s.afterPlacement(ctx, order, promoModel, input.CustomerID)
	return order, nil
}

// persistOrder creates the order, regenerating the number on the rare
// collision with an existing one.
func (s *service) persistOrder(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		order.Number, err = generateNumber(s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning order number")
		}
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, order)
		})
		if err == nil {
			return nil
		}
		if !isDuplicateNumber(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
		}
		order.ID = uuid.Nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
}

// afterPlacement handles the side effects that must only run once the order
// is durable. Failures here are logged, never surfaced: the order stands.
func (s *service) afterPlacement(ctx context.Context, order *models.Order, promoModel *models.PromoCode, customerID *string) {
	ctx = s.logg.WithOrderNumber(ctx, order.Number)

	if promoModel != nil && order.AppliedPromo != nil && order.AppliedPromo.AmountDeducted.IsPositive() {
		if err := s.promos.RecordUsage(ctx, promoModel.ID, customerID); err != nil {
			s.logg.Error(ctx, "recording promo usage", err)
		} else {
			s.metrics.IncRedemption(promoModel.Code)
		}
	}

	if s.notify != nil {
		if err := s.notify.SendMessage(ctx, notify.OrderPlacedMessage(order)); err != nil {
			s.logg.Warn(ctx, "order notification failed")
		}
	}
}

func buildOrder(input PlaceOrderInput, priced pricing.PricedOrder, products []models.Product) *models.Order {
	bySlug := make(map[string]models.Product, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p
	}

	items := make([]models.OrderLineItem, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		product := bySlug[line.ProductID]
		var productID *uuid.UUID
		if product.ID != uuid.Nil {
			id := product.ID
			productID = &id
		}
		items = append(items, models.OrderLineItem{
			ProductID:         productID,
			ProductSlug:       line.ProductID,
			Name:              product.Name,
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice,
			AppliedUnitPrice:  line.AppliedUnitPrice,
			PerUnitDiscount:   line.PerUnitDiscount,
			LineTotal:         line.LineTotal,
			Discounted:        line.Discounted,
		})
	}

	order := &models.Order{
		Status:                enums.OrderStatusOrdered,
		CustomerID:            input.CustomerID,
		CustomerName:          strings.TrimSpace(input.CustomerName),
		CustomerPhone:         strings.TrimSpace(input.CustomerPhone),
		DeliveryOptionID:      input.DeliveryOptionID,
		DeliveryArea:          input.DeliveryArea,
		DeliveryAddress:       input.DeliveryAddress,
		PaymentMethodID:       input.PaymentMethodID,
		SubtotalOriginal:      priced.SubtotalAtOriginalPrices,
		TotalDiscount:         priced.TotalDiscount,
		SubtotalAfterDiscount: priced.SubtotalAfterDiscount,
		DeliveryFee:           priced.DeliveryFee,
		GrandTotal:            priced.GrandTotal,
		Balance:               priced.GrandTotal,
		Notes:                 input.Notes,
		LineItems:             items,
	}

	if priced.AppliedPromo != nil {
		order.AppliedPromo = &types.AppliedPromo{
			Code:           priced.AppliedPromo.Code,
			Type:           priced.AppliedPromo.Type,
			DiscountValue:  priced.AppliedPromo.Value,
			AmountDeducted: priced.AppliedPromo.AmountDeducted,
		}
	}
	return order
}

func (s *service) Track(ctx context.Context, number string) (*models.Order, error) {
	order, err := s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// Update applies an admin edit. The pricing snapshot is re-derived from the
// edited lines, keeping any order-level promo deduction capped at the new
// line subtotal.
func (s *service) Update(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*models.Order, error) {
	if err := validateAdminUpdate(input); err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.PricedLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, pricing.PricedLine{
			ProductID:         line.ProductSlug,
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice,
			AppliedUnitPrice:  line.AppliedUnitPrice,
		})
	}

	var promo *pricing.AppliedPromo
	if order.AppliedPromo != nil {
		promo = &pricing.AppliedPromo{
			Code:           order.AppliedPromo.Code,
			Type:           order.AppliedPromo.Type,
			Value:          order.AppliedPromo.DiscountValue,
			AmountDeducted: order.AppliedPromo.AmountDeducted,
		}
	}

	priced := pricing.RecomputeTotals(lines, promo, input.DeliveryFee)

	nameBySlug := make(map[string]string, len(input.Lines))
	for _, line := range input.Lines {
		nameBySlug[line.ProductSlug] = line.Name
	}
	items := make([]models.OrderLineItem, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		items = append(items, models.OrderLineItem{
			ProductSlug:       line.ProductID,
			Name:              nameBySlug[line.ProductID],
			Quantity:          line.Quantity,
			OriginalUnitPrice: line.OriginalUnitPrice,
			AppliedUnitPrice:  line.AppliedUnitPrice,
			PerUnitDiscount:   line.PerUnitDiscount,
			LineTotal:         line.LineTotal,
			Discounted:        line.Discounted,
		})
	}

	order.CustomerName = strings.TrimSpace(input.CustomerName)
	order.CustomerPhone = strings.TrimSpace(input.CustomerPhone)
	order.DeliveryOptionID = input.DeliveryOptionID
	order.DeliveryArea = input.DeliveryArea
	order.DeliveryAddress = input.DeliveryAddress
	order.PaymentMethodID = input.PaymentMethodID
	order.Notes = input.Notes
	order.SubtotalOriginal = priced.SubtotalAtOriginalPrices
	order.TotalDiscount = priced.TotalDiscount
	order.SubtotalAfterDiscount = priced.SubtotalAfterDiscount
	order.DeliveryFee = priced.DeliveryFee
	order.GrandTotal = priced.GrandTotal
	if priced.AppliedPromo != nil {
		order.AppliedPromo = &types.AppliedPromo{
			Code:           priced.AppliedPromo.Code,
			Type:           priced.AppliedPromo.Type,
			DiscountValue:  priced.AppliedPromo.Value,
			AmountDeducted: priced.AppliedPromo.AmountDeducted,
		}
	} else {
		order.AppliedPromo = nil
	}
	applyPaymentState(order)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.ReplaceLineItems(ctx, order.ID, items); err != nil {
			return err
		}
		return repo.Update(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order")
	}

	order.LineItems = items
	return order, nil
}

var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusOrdered:   {enums.OrderStatusCollected, enums.OrderStatusPaid, enums.OrderStatusCancelled},
	enums.OrderStatusCollected: {enums.OrderStatusPaid, enums.OrderStatusCancelled},
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if !transitionAllowed(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition disallowed").
			WithDetails(map[string]any{"from": string(order.Status), "to": string(status)})
	}

	order.Status = status
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}
	return order, nil
}

func (s *service) RecordPayment(ctx context.Context, id uuid.UUID, input PaymentInput) (*models.Order, error) {
	if input.CashReceived.IsNegative() || input.OnlineReceived.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received amounts cannot be negative")
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot record payment on a cancelled order")
	}

	order.CashReceived = input.CashReceived
	order.OnlineReceived = input.OnlineReceived
	applyPaymentState(order)

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording payment")
	}
	return order, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting order")
	}
	return nil
}

// applyPaymentState recomputes the outstanding balance and the paid flag.
func applyPaymentState(order *models.Order) {
	order.Balance = order.GrandTotal.Sub(order.CashReceived).Sub(order.OnlineReceived)
	order.Paid = order.Balance.LessThanOrEqual(paidTolerance)
}

func (s *service) resolvePromo(ctx context.Context, code string, cartLines []pricing.CartLine, catalog []pricing.Product, authenticated bool, customerID string) (*pricing.PromoCode, error) {
	if promos.CanonicalCode(code) == "" {
		return nil, nil
	}
	promoModel, err := s.loadPromo(ctx, code)
	if err != nil {
		return nil, err
	}
	engine := promos.ToPricing(promoModel)
	eligibility := pricing.ValidatePromoEligibility(engine, pricing.EligibilityContext{
		CartSubtotal:  preDiscountSubtotal(cartLines, catalog),
		Authenticated: authenticated,
		CustomerID:    customerID,
		Now:           s.now(),
	})
	if !eligibility.Eligible {
		return nil, pkgerrors.New(pkgerrors.CodePromoIneligible, "promo code cannot be applied").
			WithDetails(map[string]any{"reason": string(eligibility.Reason), "code": engine.Code})
	}
	return &engine, nil
}

func (s *service) loadPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	promoModel, err := s.promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading promo code")
	}
	return promoModel, nil
}

// preDiscountSubtotal sums the purchasable lines at original prices. This is
// the subtotal eligibility thresholds compare against.
func preDiscountSubtotal(lines []pricing.CartLine, catalog []pricing.Product) decimal.Decimal {
	byID := make(map[string]pricing.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	subtotal := decimal.Zero
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if line.Quantity <= 0 || !ok || !product.Available {
			continue
		}
		subtotal = subtotal.Add(product.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

func toCartLines(lines []LineInput) []pricing.CartLine {
	out := make([]pricing.CartLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, pricing.CartLine{
			ProductID: strings.ToLower(strings.TrimSpace(line.ProductSlug)),
			Quantity:  line.Quantity,
		})
	}
	return out
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func validatePlaceOrderInput(input PlaceOrderInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if strings.TrimSpace(input.DeliveryOptionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery option is required")
	}
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	return nil
}

func validateAdminUpdate(input AdminUpdateInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	if input.DeliveryFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}
	for _, line := range input.Lines {
		if line.Quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity cannot be negative")
		}
		if line.OriginalUnitPrice.IsNegative() || line.AppliedUnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line prices cannot be negative")
		}
		if line.AppliedUnitPrice.GreaterThan(line.OriginalUnitPrice) {
			return pkgerrors.New(pkgerrors.CodeValidation, "applied price cannot exceed original price")
		}
	}
	return nil
}

func isDuplicateNumber(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "")
}
