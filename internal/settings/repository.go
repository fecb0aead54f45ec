package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mleong/mangobox-backend/pkg/db/models"
)

// Repository persists delivery and payment configuration.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListDeliveryOptions returns every configured delivery option in display order.
func (r *Repository) ListDeliveryOptions(ctx context.Context) ([]models.DeliveryOption, error) {
	var options []models.DeliveryOption
	if err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

// GetDeliveryOption loads one delivery option.
func (r *Repository) GetDeliveryOption(ctx context.Context, id string) (*models.DeliveryOption, error) {
	var option models.DeliveryOption
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// GetDefaultDeliveryOption loads the option flagged as the fallback.
func (r *Repository) GetDefaultDeliveryOption(ctx context.Context) (*models.DeliveryOption, error) {
	var option models.DeliveryOption
	if err := r.db.WithContext(ctx).First(&option, "is_default = ?", true).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// UpdateDeliveryOption saves an existing delivery option.
func (r *Repository) UpdateDeliveryOption(ctx context.Context, option *models.DeliveryOption) (*models.DeliveryOption, error) {
	if err := r.db.WithContext(ctx).Save(option).Error; err != nil {
		return nil, err
	}
	return option, nil
}

// GetAreaFee returns the fee override for an area and option, if any.
func (r *Repository) GetAreaFee(ctx context.Context, area, optionID string) (*models.DeliveryAreaFee, error) {
	var fee models.DeliveryAreaFee
	err := r.db.WithContext(ctx).
		Where("LOWER(area) = LOWER(?) AND delivery_option_id = ?", area, optionID).
		First(&fee).Error
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

// ListAreaFees returns every fee override grouped by area.
func (r *Repository) ListAreaFees(ctx context.Context) ([]models.DeliveryAreaFee, error) {
	var fees []models.DeliveryAreaFee
	if err := r.db.WithContext(ctx).Order("area ASC, delivery_option_id ASC").Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

// UpsertAreaFee creates or replaces the override for an area and option.
func (r *Repository) UpsertAreaFee(ctx context.Context, fee *models.DeliveryAreaFee) (*models.DeliveryAreaFee, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "area"}, {Name: "delivery_option_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fee", "updated_at"}),
		}).
		Create(fee).Error
	if err != nil {
		return nil, err
	}
	return fee, nil
}

// DeleteAreaFee removes an override.
func (r *Repository) DeleteAreaFee(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DeliveryAreaFee{}).Error
}

// ListPaymentMethods returns every payment method in display order.
func (r *Repository) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// GetPaymentMethod loads one payment method.
func (r *Repository) GetPaymentMethod(ctx context.Context, id string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &method, nil
}
