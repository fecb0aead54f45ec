package promos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/internal/pricing"
	"github.com/mleong/mangobox-backend/pkg/db"
	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

// promoRepo is the persistence surface the service needs.
type promoRepo interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	Update(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CheckInput carries the storefront's promo check request.
type CheckInput struct {
	Code          string
	CartSubtotal  decimal.Decimal
	Authenticated bool
	CustomerID    string
}

// CheckResult reports whether the promo can be applied to the given cart.
type CheckResult struct {
	Code          string
	Description   *string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	Eligible      bool
	Reason        pricing.IneligibilityReason
}

// PromoInput is the admin create/update payload after request validation.
type PromoInput struct {
	Code                 string
	Description          *string
	Active               bool
	DiscountType         enums.DiscountType
	DiscountValue        decimal.Decimal
	EligibleProductSlugs []string
	MinOrderSubtotal     decimal.Decimal
	RequiresAuth         bool
	UsageLimitTotal      int
	OnePerCustomer       bool
	ValidFrom            *time.Time
	ValidUntil           *time.Time
}

// Service manages promo codes for the storefront and the admin surface.
type Service interface {
	Check(ctx context.Context, input CheckInput) (*CheckResult, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PromoCode, error)
	Create(ctx context.Context, input PromoInput) (*models.PromoCode, error)
	Update(ctx context.Context, id uuid.UUID, input PromoInput) (*models.PromoCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo promoRepo
	now  func() time.Time
}

// NewService wires the promo service.
func NewService(repo promoRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Check(ctx context.Context, input CheckInput) (*CheckResult, error) {
	if CanonicalCode(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	promo, err := s.repo.GetByCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading promo code")
	}

	eligibility := pricing.ValidatePromoEligibility(ToPricing(promo), pricing.EligibilityContext{
		CartSubtotal:  input.CartSubtotal,
		Authenticated: input.Authenticated,
		CustomerID:    input.CustomerID,
		Now:           s.now(),
	})

	return &CheckResult{
		Code:          promo.Code,
		Description:   promo.Description,
		DiscountType:  promo.DiscountType,
		DiscountValue: promo.DiscountValue,
		Eligible:      eligibility.Eligible,
		Reason:        eligibility.Reason,
	}, nil
}

func (s *service) List(ctx context.Context) ([]models.PromoCode, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promo code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading promo code")
	}
	return promo, nil
}

func (s *service) Create(ctx context.Context, input PromoInput) (*models.PromoCode, error) {
	if err := validatePromoInput(input); err != nil {
		return nil, err
	}

	promo := &models.PromoCode{
		Code:                 CanonicalCode(input.Code),
		Description:          input.Description,
		Active:               input.Active,
		DiscountType:         input.DiscountType,
		DiscountValue:        input.DiscountValue,
		EligibleProductSlugs: input.EligibleProductSlugs,
		MinOrderSubtotal:     input.MinOrderSubtotal,
		RequiresAuth:         input.RequiresAuth,
		UsageLimitTotal:      input.UsageLimitTotal,
		OnePerCustomer:       input.OnePerCustomer,
		ValidFrom:            input.ValidFrom,
		ValidUntil:           input.ValidUntil,
	}

	created, err := s.repo.Create(ctx, promo)
	if err != nil {
		if isDuplicateCode(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating promo code")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input PromoInput) (*models.PromoCode, error) {
	if err := validatePromoInput(input); err != nil {
		return nil, err
	}

	promo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newCode := CanonicalCode(input.Code)
	if newCode != promo.Code {
		// a renamed code is a new promo as far as redemption history goes
		promo.UsageCount = 0
		promo.UsedByCustomerIDs = nil
	}

	promo.Code = newCode
	promo.Description = input.Description
	promo.Active = input.Active
	promo.DiscountType = input.DiscountType
	promo.DiscountValue = input.DiscountValue
	promo.EligibleProductSlugs = input.EligibleProductSlugs
	promo.MinOrderSubtotal = input.MinOrderSubtotal
	promo.RequiresAuth = input.RequiresAuth
	promo.UsageLimitTotal = input.UsageLimitTotal
	promo.OnePerCustomer = input.OnePerCustomer
	promo.ValidFrom = input.ValidFrom
	promo.ValidUntil = input.ValidUntil

	updated, err := s.repo.Update(ctx, promo)
	if err != nil {
		if isDuplicateCode(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating promo code")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting promo code")
	}
	return nil
}

func validatePromoInput(input PromoInput) error {
	if CanonicalCode(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	if !input.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
	}
	if !input.DiscountValue.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.MinOrderSubtotal.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum order subtotal cannot be negative")
	}
	if input.UsageLimitTotal < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage limit cannot be negative")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_until precedes valid_from")
	}
	return nil
}

func isDuplicateCode(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "")
}
