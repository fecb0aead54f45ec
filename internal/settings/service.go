package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

// settingsRepo is the persistence surface the service needs.
type settingsRepo interface {
	ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error)
	GetDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error)
	GetDefaultDeliveryOption(ctx context.Context) (*models.DeliveryOption, error)
	UpdateDeliveryOption(ctx context.Context, option *models.DeliveryOption) (*models.DeliveryOption, error)
	GetAreaFee(ctx context.Context, area, optionID string) (*models.DeliveryAreaFee, error)
	ListAreaFees(ctx context.Context) ([]models.DeliveryAreaFee, error)
	UpsertAreaFee(ctx context.Context, fee *models.DeliveryAreaFee) (*models.DeliveryAreaFee, error)
	DeleteAreaFee(ctx context.Context, id int64) error
	ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error)
}

// DeliveryOptionInput is the admin update payload for a delivery option.
type DeliveryOptionInput struct {
	Label     string
	BaseFee   decimal.Decimal
	IsDefault bool
	SortOrder int
}

// AreaFeeInput sets the fee override for an area and delivery option.
type AreaFeeInput struct {
	Area             string
	DeliveryOptionID string
	Fee              decimal.Decimal
}

// Service exposes delivery and payment configuration.
type Service interface {
	DeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error)
	PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	ResolveDeliveryFee(ctx context.Context, optionID string, area *string) (decimal.Decimal, error)
	RequireEnabledPaymentMethod(ctx context.Context, id string) error
	AreaFees(ctx context.Context) ([]models.DeliveryAreaFee, error)
	SetAreaFee(ctx context.Context, input AreaFeeInput) (*models.DeliveryAreaFee, error)
	RemoveAreaFee(ctx context.Context, id int64) error
	UpdateDeliveryOption(ctx context.Context, id string, input DeliveryOptionInput) (*models.DeliveryOption, error)
}

type service struct {
	repo settingsRepo
}

// NewService wires the settings service.
func NewService(repo settingsRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) DeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error) {
	return s.repo.ListDeliveryOptions(ctx)
}

func (s *service) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	methods, err := s.repo.ListPaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	enabled := methods[:0]
	for _, m := range methods {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled, nil
}

// ResolveDeliveryFee resolves the fee for a chosen option and area. Pickup
// options always charge their base fee. For courier options the area override
// wins, then the option's own base fee, then the default option's base fee.
func (s *service) ResolveDeliveryFee(ctx context.Context, optionID string, area *string) (decimal.Decimal, error) {
	option, err := s.repo.GetDeliveryOption(ctx, optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery option")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery option")
	}

	if option.Pickup {
		return option.BaseFee, nil
	}

	if area != nil && strings.TrimSpace(*area) != "" {
		override, err := s.repo.GetAreaFee(ctx, strings.TrimSpace(*area), option.ID)
		if err == nil {
			return override.Fee, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading area fee")
		}
	}

	if option.BaseFee.IsPositive() {
		return option.BaseFee, nil
	}

	fallback, err := s.repo.GetDefaultDeliveryOption(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return option.BaseFee, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading default delivery option")
	}
	return fallback.BaseFee, nil
}

func (s *service) RequireEnabledPaymentMethod(ctx context.Context, id string) error {
	method, err := s.repo.GetPaymentMethod(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment method")
	}
	if !method.Enabled {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is disabled")
	}
	return nil
}

func (s *service) AreaFees(ctx context.Context) ([]models.DeliveryAreaFee, error) {
	return s.repo.ListAreaFees(ctx)
}

func (s *service) SetAreaFee(ctx context.Context, input AreaFeeInput) (*models.DeliveryAreaFee, error) {
	area := strings.TrimSpace(input.Area)
	if area == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "area is required")
	}
	if input.Fee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fee cannot be negative")
	}
	if _, err := s.repo.GetDeliveryOption(ctx, input.DeliveryOptionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery option")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery option")
	}

	return s.repo.UpsertAreaFee(ctx, &models.DeliveryAreaFee{
		Area:             area,
		DeliveryOptionID: input.DeliveryOptionID,
		Fee:              input.Fee,
	})
}

func (s *service) RemoveAreaFee(ctx context.Context, id int64) error {
	return s.repo.DeleteAreaFee(ctx, id)
}

func (s *service) UpdateDeliveryOption(ctx context.Context, id string, input DeliveryOptionInput) (*models.DeliveryOption, error) {
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}
	if input.BaseFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base fee cannot be negative")
	}

	option, err := s.repo.GetDeliveryOption(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading delivery option")
	}

	option.Label = strings.TrimSpace(input.Label)
	option.BaseFee = input.BaseFee
	option.IsDefault = input.IsDefault
	option.SortOrder = input.SortOrder

	return s.repo.UpdateDeliveryOption(ctx, option)
}
