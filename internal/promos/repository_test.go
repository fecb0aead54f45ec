package promos

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

func mustCreatePromo(t *testing.T, repo *Repository, limit int) *models.PromoCode {
	t.Helper()

	promo, err := repo.Create(context.Background(), &models.PromoCode{
		ID:              uuid.New(),
		Code:            CanonicalCode(fmt.Sprintf("TEST-%s", uuid.NewString()[:8])),
		Active:          true,
		DiscountType:    enums.DiscountFixedAmountOfSubtotal,
		DiscountValue:   decimal.RequireFromString("10"),
		UsageLimitTotal: limit,
	})
	if err != nil {
		t.Fatalf("creating test promo: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Delete(context.Background(), promo.ID)
	})
	return promo
}

func TestGetByCodeIsCaseInsensitive(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	promo := mustCreatePromo(t, repo, 0)

	found, err := repo.GetByCode(context.Background(), "  "+strings.ToLower(promo.Code)+"  ")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if found.ID != promo.ID {
		t.Fatalf("expected promo %s, got %s", promo.ID, found.ID)
	}
}

func TestRecordUsageDeactivatesAtLimit(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	promo := mustCreatePromo(t, repo, 2)
	ctx := context.Background()

	if err := repo.RecordUsage(ctx, promo.ID, nil); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	loaded, err := repo.GetByID(ctx, promo.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UsageCount != 1 || !loaded.Active {
		t.Fatalf("after first usage: count=%d active=%t", loaded.UsageCount, loaded.Active)
	}

	if err := repo.RecordUsage(ctx, promo.ID, nil); err != nil {
		t.Fatalf("second usage: %v", err)
	}
	loaded, err = repo.GetByID(ctx, promo.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UsageCount != 2 || loaded.Active {
		t.Fatalf("limit reached should deactivate: count=%d active=%t", loaded.UsageCount, loaded.Active)
	}

	err = repo.RecordUsage(ctx, promo.ID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePromoIneligible {
		t.Fatalf("expected %s past the limit, got %v", pkgerrors.CodePromoIneligible, err)
	}
}

func TestRecordUsageUnlimitedStaysActive(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	promo := mustCreatePromo(t, repo, 0)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := repo.RecordUsage(ctx, promo.ID, nil); err != nil {
			t.Fatalf("usage %d: %v", i, err)
		}
	}

	loaded, err := repo.GetByID(ctx, promo.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UsageCount != 7 || !loaded.Active {
		t.Fatalf("unlimited promo changed unexpectedly: count=%d active=%t", loaded.UsageCount, loaded.Active)
	}
}

func TestRecordUsageCustomerAppendIsIdempotent(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	promo := mustCreatePromo(t, repo, 0)
	ctx := context.Background()
	customer := "cust-1"

	if err := repo.RecordUsage(ctx, promo.ID, &customer); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	if err := repo.RecordUsage(ctx, promo.ID, &customer); err != nil {
		t.Fatalf("second usage: %v", err)
	}

	loaded, err := repo.GetByID(ctx, promo.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.UsedByCustomerIDs) != 1 || loaded.UsedByCustomerIDs[0] != customer {
		t.Fatalf("expected single customer entry, got %v", loaded.UsedByCustomerIDs)
	}
	if loaded.UsageCount != 2 {
		t.Fatalf("usage count should still increment, got %d", loaded.UsageCount)
	}
}

func TestRecordUsageConcurrentCustomerAppendsLoseNoIDs(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	promo := mustCreatePromo(t, repo, 0)
	ctx := context.Background()
	const customers = 8

	var wg sync.WaitGroup
	errs := make(chan error, customers)
	for i := 0; i < customers; i++ {
		customer := fmt.Sprintf("cust-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.RecordUsage(ctx, promo.ID, &customer)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	loaded, err := repo.GetByID(ctx, promo.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UsageCount != customers {
		t.Fatalf("usage count = %d, want %d", loaded.UsageCount, customers)
	}
	seen := map[string]bool{}
	for _, id := range loaded.UsedByCustomerIDs {
		seen[id] = true
	}
	for i := 0; i < customers; i++ {
		if !seen[fmt.Sprintf("cust-%d", i)] {
			t.Fatalf("customer cust-%d missing from used-by list %v", i, loaded.UsedByCustomerIDs)
		}
	}
	if len(loaded.UsedByCustomerIDs) != customers {
		t.Fatalf("used-by list has duplicates or extras: %v", loaded.UsedByCustomerIDs)
	}
}

func TestRecordUsageConcurrentRedemptionsRespectLimit(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	const limit = 5
	promo := mustCreatePromo(t, repo, limit)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, limit*2)
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.RecordUsage(ctx, promo.ID, nil)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodePromoIneligible:
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != limit || rejected != limit {
		t.Fatalf("expected %d redemptions and %d rejections, got %d/%d", limit, limit, succeeded, rejected)
	}

	loaded, err := repo.GetByID(ctx, promo.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.UsageCount != limit {
		t.Fatalf("usage count overshoot: %d", loaded.UsageCount)
	}
	if loaded.Active {
		t.Fatal("promo should be deactivated at the limit")
	}
}
