package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"chatrelay-backend/internal/ratelimit"
)

const (
	unknownClient    = "unknown"
	rateLimitMessage = "You are sending messages too quickly. Please wait a moment before trying again."
)

type RateLimiter struct {
	store ratelimit.Store
}

func NewRateLimiter(store ratelimit.Store) *RateLimiter {
	return &RateLimiter{store: store}
}

// Middleware admits at most one request per client address per window.
// A store failure lets the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ClientAddress(r)

		allowed, err := rl.store.Allow(r.Context(), client)
		if err != nil {
			slog.WarnContext(r.Context(), "rate limit store unavailable, allowing request",
				"client", client, "error", err, "request_id", r.Header.Get(RequestIDHeader))
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			writeError(w, http.StatusTooManyRequests, rateLimitMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientAddress keys the rate-limit table: X-Forwarded-For, then
// X-Real-IP, then the shared "unknown" bucket.
func ClientAddress(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		return fwd
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return unknownClient
}
