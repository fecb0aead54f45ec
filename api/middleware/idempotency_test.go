package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

const checkoutBody = `{"lines":[{"productId":"harum-manis","qty":2}],"deliveryOption":"grab"}`

type memStore struct {
	data     map[string]string
	setCalls int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.setCalls++
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

// checkoutRequest builds a place-order request with the chi route pattern
// set, since the middleware matches on patterns rather than raw paths.
func checkoutRequest(body, idemKey string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/api/v1/orders"}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestGuardsRouteOnlyForCheckout(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    bool
	}{
		{"place order", http.MethodPost, "/api/v1/orders", true},
		{"track order", http.MethodGet, "/api/v1/orders/{number}", false},
		{"promo check", http.MethodPost, "/api/v1/promos/check", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guardsRoute(tt.method, tt.pattern); got != tt.want {
				t.Fatalf("guardsRoute(%s, %s) = %v, want %v", tt.method, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestIdempotencyMiddlewareSkipsWithoutStore(t *testing.T) {
	var calls int
	handler := Idempotency(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	// No Idempotency-Key header, yet the request passes straight through.
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(checkoutBody, ""))

	if resp.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("status = %d, calls = %d; want 201 and 1", resp.Code, calls)
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	var calls int
	handler := Idempotency(newMemStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(checkoutBody, ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if calls != 0 {
		t.Fatal("checkout handler must not run without an idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newMemStore()
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"orderNumber":"MB-0001"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(checkoutBody, "key-1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(checkoutBody, "key-1"))

	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201", second.Code)
	}
	if got := second.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("replay content-type = %q", got)
	}
	if strings.TrimSpace(second.Body.String()) != `{"orderNumber":"MB-0001"}` {
		t.Fatalf("replay body = %s", second.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if store.setCalls != 1 {
		t.Fatalf("store writes = %d, want 1", store.setCalls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	handler := Idempotency(newMemStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(checkoutBody, "key-2"))

	changed := strings.Replace(checkoutBody, `"qty":2`, `"qty":5`, 1)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(changed, "key-2"))

	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("error code = %s, want %s", payload.Error.Code, pkgerrors.CodeIdempotency)
	}
}
