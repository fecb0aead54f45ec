package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/db/models"
	"github.com/mleong/mangobox-backend/pkg/enums"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/types"
)

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("  ", "123"); err == nil {
		t.Fatal("expected error for blank token")
	}
	if _, err := NewClient("bot-token", ""); err == nil {
		t.Fatal("expected error for blank chat id")
	}
}

func TestSendMessagePostsToBotEndpoint(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "-100200", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.SendMessage(context.Background(), "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody["chat_id"] != "-100200" || gotBody["text"] != "hello" || gotBody["parse_mode"] != "MarkdownV2" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestSendMessageRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "7", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithMaxAttempts(3))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.SendMessage(context.Background(), "retry me"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSendMessageDoesNotRetryRejections(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"can't parse entities"}`))
	}))
	defer server.Close()

	client, err := NewClient("bot-token", "7", WithBaseURL(server.URL), WithHTTPClient(server.Client()), WithMaxAttempts(3))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.SendMessage(context.Background(), "bad markdown")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("rejection should not be retried, got %d attempts", calls.Load())
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	t.Parallel()

	got := EscapeMarkdownV2("a_b*c[d]e(f)g~h`i>j#k+l-m=n|o{p}q.r!s\\t")
	want := `a\_b\*c\[d\]e\(f\)g\~h\` + "\\`" + `i\>j\#k\+l\-m\=n\|o\{p\}q\.r\!s\\t`
	if got != want {
		t.Fatalf("escape mismatch:\n got  %s\n want %s", got, want)
	}
	if EscapeMarkdownV2("plain text 123") != "plain text 123" {
		t.Fatal("plain text must pass through unchanged")
	}
}

func TestOrderPlacedMessage(t *testing.T) {
	t.Parallel()

	area := "Bangsar"
	order := &models.Order{
		Number:        "ORD-20260828-7KQ2M",
		CustomerName:  "Mei Ling",
		CustomerPhone: "+60123456789",
		LineItems: []models.OrderLineItem{
			{Name: "Harumanis Box (5kg)", Quantity: 2, LineTotal: decimal.RequireFromString("180.00")},
		},
		SubtotalOriginal: decimal.RequireFromString("220.00"),
		AppliedPromo: &types.AppliedPromo{
			Code:           "MANGO20",
			Type:           enums.DiscountFixedAmountPerEligibleUnit,
			AmountDeducted: decimal.RequireFromString("40.00"),
		},
		DeliveryOptionID: "grab",
		DeliveryArea:     &area,
		DeliveryFee:      decimal.RequireFromString("15.00"),
		GrandTotal:       decimal.RequireFromString("195.00"),
		PaymentMethodID:  "cod",
	}

	msg := OrderPlacedMessage(order)

	for _, want := range []string{
		`ORD\-20260828\-7KQ2M`,
		`2 x Harumanis Box \(5kg\) \= RM180\.00`,
		`Promo MANGO20: \-RM40\.00`,
		`*Total: RM195\.00*`,
		"Area: Bangsar",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
