package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeLimiter struct {
	decision RateDecision
	err      error
	lastKey  string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	f.lastKey = key
	return f.decision, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRateLimitAllows(t *testing.T) {
	lim := &fakeLimiter{decision: RateDecision{Allowed: true, Limit: 10, Remaining: 9}}
	h := RateLimit(lim, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "9" {
		t.Errorf("X-RateLimit-Remaining = %q, want %q", got, "9")
	}
	if lim.lastKey != "ratelimit:10.1.2.3" {
		t.Errorf("limiter key = %q, want %q", lim.lastKey, "ratelimit:10.1.2.3")
	}
}

func TestRateLimitBlocks(t *testing.T) {
	lim := &fakeLimiter{decision: RateDecision{Allowed: false, Limit: 10, RetryAfter: 3 * time.Second}}
	h := RateLimit(lim, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler called for blocked request")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	lim := &fakeLimiter{err: errors.New("redis down")}
	called := false
	h := RateLimit(lim, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("request was not allowed through on limiter error")
	}
}

func TestRealIPIgnoresProxyHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	if got := realIP(req); got != "192.0.2.7" {
		t.Errorf("realIP() = %q, want %q", got, "192.0.2.7")
	}
}
