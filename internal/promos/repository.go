package promos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

// Repository persists promo codes.
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

// CanonicalCode normalizes a promo code to its stored uppercase form.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByCode loads a promo by its code, case-insensitively.
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "code = ?", CanonicalCode(code)).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// GetByID loads a promo by primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// List returns all promos, newest first.
func (r *Repository) List(ctx context.Context) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}

// Create inserts a new promo row.
func (r *Repository) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

// Update saves an existing promo row.
func (r *Repository) Update(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	if err := r.db.WithContext(ctx).Save(promo).Error; err != nil {
		return nil, err
	}
	return promo, nil
}

// Delete removes a promo by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PromoCode{}).Error
}

// RecordUsage burns one redemption of the promo. The count increment, the
// deactivation at the usage limit, and the customer bookkeeping all happen in
// a single guarded UPDATE, so concurrent redemptions can never push the count
// past the limit or drop each other's customer ids: whoever loses the race on
// the limit matches zero rows and gets a usage-limit error, and the customer
// append stays idempotent because an id already in the array is left alone.
// Callers invoke this once per order, after the order itself is durably
// persisted.
func (r *Repository) RecordUsage(ctx context.Context, promoID uuid.UUID, customerID *string) error {
	updates := map[string]any{
		"usage_count": gorm.Expr("usage_count + 1"),
		"active": gorm.Expr(
			"CASE WHEN usage_limit_total > 0 AND usage_count + 1 >= usage_limit_total THEN ? ELSE active END",
			false,
		),
	}
	if customerID != nil && *customerID != "" {
		updates["used_by_customer_ids"] = gorm.Expr(
			"CASE WHEN ? = ANY(used_by_customer_ids) THEN used_by_customer_ids ELSE array_append(used_by_customer_ids, ?) END",
			*customerID, *customerID,
		)
	}

	res := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ?", promoID).
		Where("usage_limit_total = 0 OR usage_count < usage_limit_total").
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var promo models.PromoCode
		if err := r.db.WithContext(ctx).First(&promo, "id = ?", promoID).Error; err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodePromoIneligible, "promo usage limit reached").
			WithDetails(map[string]any{"reason": "USAGE_LIMIT_REACHED", "code": promo.Code})
	}
	return nil
}
