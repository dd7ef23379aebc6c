package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatrelay-backend/internal/models"
)

type stubStore struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubStore) Allow(ctx context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestClientAddress(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		realIP    string
		expected  string
	}{
		{"forwarded-for wins", "203.0.113.7", "198.51.100.1", "203.0.113.7"},
		{"real ip fallback", "", "198.51.100.1", "198.51.100.1"},
		{"unknown bucket", "", "", "unknown"},
		{"forwarded chain kept whole", "203.0.113.7, 10.0.0.1", "", "203.0.113.7, 10.0.0.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			if got := ClientAddress(req); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRateLimiter_Rejects(t *testing.T) {
	store := &stubStore{allow: false}
	called := false
	h := NewRateLimiter(store).Middleware(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Real-IP", "198.51.100.1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rr.Code)
	}
	if called {
		t.Error("Expected handler not to run for a throttled request")
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Expected JSON error body: %v", err)
	}
	if resp.Error == "" {
		t.Error("Expected a human-readable error message")
	}
	if len(store.keys) != 1 || store.keys[0] != "198.51.100.1" {
		t.Errorf("Expected store keyed by client address, got %v", store.keys)
	}
}

func TestRateLimiter_Allows(t *testing.T) {
	called := false
	h := NewRateLimiter(&stubStore{allow: true}).Middleware(okHandler(&called))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	if rr.Code != http.StatusOK || !called {
		t.Errorf("Expected request to pass through, got %d", rr.Code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	called := false
	h := NewRateLimiter(&stubStore{err: errors.New("redis down")}).Middleware(okHandler(&called))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	if !called {
		t.Error("Expected request to pass through when the store fails")
	}
}
