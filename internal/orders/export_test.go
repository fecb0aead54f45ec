package orders

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	"github.com/mleong/mangobox-backend/pkg/logger"
	"github.com/mleong/mangobox-backend/pkg/types"
)

func TestExportCSV(t *testing.T) {
	t.Parallel()

	area := "Bangsar"
	repo := newStubOrderRepo()
	repo.listBetween = []models.Order{{
		ID:               uuid.New(),
		Number:           "ORD-20260828-7KQ2M",
		Status:           enums.OrderStatusPaid,
		CustomerName:     "Mei Ling",
		CustomerPhone:    "+60123456789",
		DeliveryOptionID: "grab",
		DeliveryArea:     &area,
		PaymentMethodID:  "cod",
		SubtotalOriginal: dec("220.00"),
		TotalDiscount:    dec("40.00"),
		AppliedPromo: &types.AppliedPromo{
			Code:           "MANGO20",
			Type:           enums.DiscountFixedAmountPerEligibleUnit,
			AmountDeducted: dec("40.00"),
		},
		DeliveryFee:    dec("15.00"),
		GrandTotal:     dec("195.00"),
		CashReceived:   dec("195.00"),
		OnlineReceived: dec("0"),
		Balance:        dec("0"),
		Paid:           true,
		LineItems: []models.OrderLineItem{
			{Name: "Harumanis Box", Quantity: 2, LineTotal: dec("180.00")},
		},
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}}

	svc, err := NewService(
		repo,
		stubTx{},
		&stubCatalog{},
		&stubPromoStore{},
		&stubSettings{fee: dec("0")},
		nil,
		nil,
		logger.New(logger.Options{Output: io.Discard}),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	out, err := svc.ExportCSV(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
	if records[0][0] != "number" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	row := records[1]
	want := map[int]string{
		0:  "ORD-20260828-7KQ2M",
		2:  "paid",
		6:  "Bangsar",
		8:  "220.00",
		9:  "40.00",
		10: "MANGO20",
		12: "195.00",
		16: "true",
		17: "2x Harumanis Box",
	}
	for idx, expected := range want {
		if row[idx] != expected {
			t.Fatalf("column %d = %q, want %q (row %v)", idx, row[idx], expected, row)
		}
	}
}
