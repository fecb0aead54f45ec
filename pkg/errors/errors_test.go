package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "quantity must be positive")
	if err.Code() != CodeValidation {
		t.Fatalf("expected %s, got %s", CodeValidation, err.Code())
	}
	if err.Message() != "quantity must be positive" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Wrap(CodeDependency, cause, "telegram send failed")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	t.Parallel()

	err := Wrap(CodeNotFound, nil, "promo missing")
	if err.Unwrap() != nil {
		t.Fatal("expected no cause")
	}
	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := New(CodePromoIneligible, "usage limit reached")
	wrapped := fmt.Errorf("placing order: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodePromoIneligible {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestAsReturnsNilForUntyped(t *testing.T) {
	t.Parallel()

	if As(errors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestMetadataForUnknownFallsBackToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 fallback, got %d", meta.HTTPStatus)
	}
}

func TestMetadataStatuses(t *testing.T) {
	t.Parallel()

	cases := map[Code]int{
		CodeValidation:      http.StatusBadRequest,
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeForbidden:       http.StatusForbidden,
		CodeNotFound:        http.StatusNotFound,
		CodeConflict:        http.StatusConflict,
		CodePromoIneligible: http.StatusUnprocessableEntity,
		CodeIdempotency:     http.StatusConflict,
		CodeRateLimit:       http.StatusTooManyRequests,
		CodeInternal:        http.StatusInternalServerError,
		CodeDependency:      http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Fatalf("%s: expected %d, got %d", code, want, got)
		}
	}
}

func TestWithDetailsRoundTrip(t *testing.T) {
	t.Parallel()

	details := map[string]string{"reason": "BELOW_MINIMUM"}
	err := New(CodePromoIneligible, "below minimum").WithDetails(details)
	if err.Details() == nil {
		t.Fatal("expected details to be retained")
	}
}
