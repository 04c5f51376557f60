package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOperatorMiddleware(t *testing.T) {
	var seen string
	handler := Operator(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OperatorIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without operator, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set(OperatorHeader, strings.Repeat("x", maxOperatorIDLen+1))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for oversized operator, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set(OperatorHeader, " ops@example.com ")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen != "ops@example.com" {
		t.Fatalf("expected trimmed operator in context, got %q", seen)
	}
}

type fakeRateStore struct {
	counts map[string]int64
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestOperatorRateLimit(t *testing.T) {
	store := &fakeRateStore{counts: map[string]int64{}}
	policy := RateLimitPolicy{Name: "bulk", Window: time.Minute, Limit: 2}
	handler := OperatorRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(operator string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/variants/bulk/margin", nil)
		req = req.WithContext(WithOperatorID(req.Context(), operator))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("a"); code != http.StatusOK {
			t.Fatalf("expected success before limit, got %d", code)
		}
	}
	if code := send("a"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", code)
	}
	if code := send("b"); code != http.StatusOK {
		t.Fatalf("limits are per operator, got %d", code)
	}
	if store.counts["bulk:a"] != 3 {
		t.Fatalf("expected scoped counter, got %v", store.counts)
	}
}

func TestOperatorRateLimitDisabled(t *testing.T) {
	handler := OperatorRateLimit(RateLimitPolicy{Name: "bulk"}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}
