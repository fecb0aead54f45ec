package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

type stubProductRepo struct {
	products []models.Product
	created  *models.Product
	updated  *models.Product
}

func (r *stubProductRepo) List(context.Context) ([]models.Product, error) {
	return r.products, nil
}

func (r *stubProductRepo) ListAvailable(context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		if p.Available {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	r.created = product
	return product, nil
}

func (r *stubProductRepo) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	r.updated = product
	return product, nil
}

func (r *stubProductRepo) Delete(context.Context, uuid.UUID) error { return nil }

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestPricingCatalogKeepsUnavailableProducts(t *testing.T) {
	t.Parallel()

	repo := &stubProductRepo{products: []models.Product{
		{ID: uuid.New(), Slug: "mango-a", UnitPrice: dec("110"), Available: true},
		{ID: uuid.New(), Slug: "mango-b", UnitPrice: dec("95"), Available: false},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	catalog, err := svc.PricingCatalog(context.Background())
	if err != nil {
		t.Fatalf("PricingCatalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected both products, got %d", len(catalog))
	}
	if catalog[1].Available {
		t.Fatal("availability flag must carry over")
	}
	if catalog[0].ID != "mango-a" {
		t.Fatalf("pricing id should be the slug, got %s", catalog[0].ID)
	}
}

func TestStorefrontOnlyAvailable(t *testing.T) {
	t.Parallel()

	repo := &stubProductRepo{products: []models.Product{
		{ID: uuid.New(), Slug: "mango-a", Available: true},
		{ID: uuid.New(), Slug: "mango-b", Available: false},
	}}
	svc, _ := NewService(repo)

	products, err := svc.Storefront(context.Background())
	if err != nil {
		t.Fatalf("Storefront: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "mango-a" {
		t.Fatalf("unexpected storefront list: %+v", products)
	}
}

func TestCreateNormalizesSlug(t *testing.T) {
	t.Parallel()

	repo := &stubProductRepo{}
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), ProductInput{
		Slug:      "  Mango-A ",
		Name:      " Alphonso Box ",
		UnitPrice: dec("110"),
		Available: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Slug != "mango-a" || created.Name != "Alphonso Box" {
		t.Fatalf("normalization failed: %+v", created)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubProductRepo{})

	cases := []ProductInput{
		{Slug: "", Name: "x", UnitPrice: dec("1")},
		{Slug: "x", Name: "", UnitPrice: dec("1")},
		{Slug: "x", Name: "x", UnitPrice: dec("-1")},
		{Slug: "x", Name: "x", UnitPrice: dec("1"), UnitWeightKG: dec("-2")},
	}
	for i, input := range cases {
		_, err := svc.Create(context.Background(), input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubProductRepo{})

	_, err := svc.Get(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
