package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	"github.com/mleong/mangobox-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'ordered',
  customer_id TEXT,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  delivery_option_id TEXT NOT NULL,
  delivery_area TEXT,
  delivery_address TEXT,
  payment_method_id TEXT NOT NULL,
  subtotal_original TEXT NOT NULL,
  total_discount TEXT NOT NULL DEFAULT '0',
  subtotal_after_discount TEXT NOT NULL,
  delivery_fee TEXT NOT NULL DEFAULT '0',
  grand_total TEXT NOT NULL,
  applied_promo TEXT,
  cash_received TEXT NOT NULL DEFAULT '0',
  online_received TEXT NOT NULL DEFAULT '0',
  balance TEXT NOT NULL DEFAULT '0',
  paid INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItemsTable := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  product_slug TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  original_unit_price TEXT NOT NULL,
  applied_unit_price TEXT NOT NULL,
  per_unit_discount TEXT NOT NULL DEFAULT '0',
  line_total TEXT NOT NULL,
  discounted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(lineItemsTable).Error)
	return db
}

// mustCreateOrder sets IDs and timestamps explicitly because the sqlite
// schema carries no gen_random_uuid() default.
func mustCreateOrder(t *testing.T, repo Repository, number string, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                    uuid.New(),
		Number:                number,
		Status:                enums.OrderStatusOrdered,
		CustomerName:          "Mei Ling",
		CustomerPhone:         "+60123456789",
		DeliveryOptionID:      "grab",
		PaymentMethodID:       "cod",
		SubtotalOriginal:      decimal.RequireFromString("110.00"),
		SubtotalAfterDiscount: decimal.RequireFromString("110.00"),
		DeliveryFee:           decimal.RequireFromString("15.00"),
		GrandTotal:            decimal.RequireFromString("125.00"),
		Balance:               decimal.RequireFromString("125.00"),
		LineItems: []models.OrderLineItem{{
			ID:                uuid.New(),
			ProductSlug:       "harumanis-box",
			Name:              "Harumanis Box",
			Quantity:          1,
			OriginalUnitPrice: decimal.RequireFromString("110.00"),
			AppliedUnitPrice:  decimal.RequireFromString("110.00"),
			LineTotal:         decimal.RequireFromString("110.00"),
		}},
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), order))
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), order.ID)
	})
	return order
}

func testNumber(t *testing.T) string {
	t.Helper()

	number, err := generateNumber(time.Now())
	require.NoError(t, err)
	return number
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := mustCreateOrder(t, repo, testNumber(t), time.Now())

	loaded, err := repo.GetByNumber(context.Background(), order.Number)
	require.NoError(t, err)
	assert.Equal(t, order.ID, loaded.ID)
	require.Len(t, loaded.LineItems, 1)
	assert.Equal(t, "harumanis-box", loaded.LineItems[0].ProductSlug)
}

func TestRepositoryListPaginates(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		mustCreateOrder(t, repo, testNumber(t), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.List(context.Background(), ListFilter{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.List(context.Background(), ListFilter{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	for _, a := range first.Orders {
		for _, b := range second.Orders {
			assert.NotEqual(t, a.ID, b.ID, "order appears on both pages")
		}
	}
}

func TestRepositoryFiltersByStatus(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := mustCreateOrder(t, repo, testNumber(t), time.Now())

	cancelled := enums.OrderStatusCancelled
	list, err := repo.List(context.Background(), ListFilter{Status: &cancelled}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	for _, row := range list.Orders {
		assert.NotEqual(t, order.ID, row.ID)
	}

	ordered := enums.OrderStatusOrdered
	list, err = repo.List(context.Background(), ListFilter{Status: &ordered}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	found := false
	for _, row := range list.Orders {
		if row.ID == order.ID {
			found = true
		}
	}
	assert.True(t, found, "order should match its own status filter")
}

func TestRepositoryReplaceLineItems(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := mustCreateOrder(t, repo, testNumber(t), time.Now())

	err := repo.ReplaceLineItems(context.Background(), order.ID, []models.OrderLineItem{{
		ID:                uuid.New(),
		ProductSlug:       "mini-box",
		Name:              "Mini Box",
		Quantity:          2,
		OriginalUnitPrice: decimal.RequireFromString("50.00"),
		AppliedUnitPrice:  decimal.RequireFromString("50.00"),
		LineTotal:         decimal.RequireFromString("100.00"),
	}})
	require.NoError(t, err)

	loaded, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.LineItems, 1)
	assert.Equal(t, "mini-box", loaded.LineItems[0].ProductSlug)
}

func TestRepositoryDeleteRemovesLines(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := mustCreateOrder(t, repo, testNumber(t), time.Now())

	require.NoError(t, repo.Delete(context.Background(), order.ID))

	_, err := repo.GetByID(context.Background(), order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
