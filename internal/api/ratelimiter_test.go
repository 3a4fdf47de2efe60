package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticLimiter struct {
	allow bool
}

func (s *staticLimiter) Allow(string) bool {
	return s.allow
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{allow: false}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
}

func TestClientLimiterUsesDefaults(t *testing.T) {
	limiter := newClientLimiter(0, 0)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first request to be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected burst of one to block the second request")
	}
}

func TestClientLimiterSeparatesClients(t *testing.T) {
	limiter := newClientLimiter(1, 1)
	if !limiter.Allow("10.0.0.1") || !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected each client to get its own bucket")
	}
	if got := limiter.tracked(); got != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", got)
	}
}

func TestClientLimiterEvictsLeastRecentlySeenClient(t *testing.T) {
	limiter := newClientLimiter(0.001, 1)
	limiter.maxClients = 2

	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected first request from 10.0.0.1 to be allowed")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected first request from 10.0.0.2 to be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected 10.0.0.1 to be out of tokens")
	}

	// 10.0.0.2 is now the least recently seen and makes room for 10.0.0.3.
	if !limiter.Allow("10.0.0.3") {
		t.Fatalf("expected first request from 10.0.0.3 to be allowed")
	}
	if got := limiter.tracked(); got != 2 {
		t.Fatalf("expected table to stay at 2 clients, got %d", got)
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected 10.0.0.1 to keep its drained bucket after eviction")
	}
}

func TestClientLimiterRotatingAddressesKeepActiveBucketDrained(t *testing.T) {
	limiter := newClientLimiter(0.001, 1)
	limiter.maxClients = 8

	if !limiter.Allow("198.51.100.1") {
		t.Fatalf("expected first request to be allowed")
	}
	for i := 0; i < 64; i++ {
		if limiter.Allow("198.51.100.1") {
			t.Fatalf("request %d from a drained client was allowed", i)
		}
		limiter.Allow(fmt.Sprintf("203.0.113.%d", i))
	}
	if got := limiter.tracked(); got != 8 {
		t.Fatalf("expected table to stay at 8 clients, got %d", got)
	}
}

func TestClientKeyStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5123"
	if got := clientKey(req); got != "192.0.2.7" {
		t.Fatalf("expected host only, got %s", got)
	}

	req.RemoteAddr = "pipe"
	if got := clientKey(req); got != "pipe" {
		t.Fatalf("expected raw address fallback, got %s", got)
	}
}
