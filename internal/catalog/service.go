package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/internal/pricing"
	"github.com/mleong/mangobox-backend/pkg/db"
	"github.com/mleong/mangobox-backend/pkg/db/models"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

// productRepo is the persistence surface the service needs.
type productRepo interface {
	List(ctx context.Context) ([]models.Product, error)
	ListAvailable(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductInput is the admin create/update payload after request validation.
type ProductInput struct {
	Slug         string
	Name         string
	Description  *string
	UnitPrice    decimal.Decimal
	UnitWeightKG decimal.Decimal
	Available    bool
	SortOrder    int
}

// Service manages the product catalog.
type Service interface {
	Storefront(ctx context.Context) ([]models.Product, error)
	PricingCatalog(ctx context.Context) ([]pricing.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo productRepo
}

// NewService wires the catalog service.
func NewService(repo productRepo) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{repo: repo}, nil
}

// Storefront lists the products customers can order.
func (s *service) Storefront(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListAvailable(ctx)
}

// PricingCatalog maps the full catalog onto the pricing engine's view.
// Unavailable products stay in the slice: the engine drops their lines
// itself, which keeps the permissive line policy in one place.
func (s *service) PricingCatalog(ctx context.Context) ([]pricing.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading catalog")
	}
	out := make([]pricing.Product, 0, len(products))
	for _, p := range products {
		out = append(out, pricing.Product{
			ID:           p.Slug,
			UnitPrice:    p.UnitPrice,
			UnitWeightKG: p.UnitWeightKG,
			Available:    p.Available,
		})
	}
	return out, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Slug:         normalizeSlug(input.Slug),
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		UnitPrice:    input.UnitPrice,
		UnitWeightKG: input.UnitWeightKG,
		Available:    input.Available,
		SortOrder:    input.SortOrder,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if isDuplicateSlug(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Slug = normalizeSlug(input.Slug)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.UnitPrice = input.UnitPrice
	product.UnitWeightKG = input.UnitWeightKG
	product.Available = input.Available
	product.SortOrder = input.SortOrder

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		if isDuplicateSlug(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func validateProductInput(input ProductInput) error {
	if normalizeSlug(input.Slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.UnitWeightKG.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit weight cannot be negative")
	}
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func isDuplicateSlug(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "")
}
