package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterSpendsBurstThenDenies(t *testing.T) {
	clock := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 3).WithClock(func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		if !rl.Allow("203.0.113.1") {
			t.Fatalf("request %d should be within burst", i+1)
		}
	}
	if rl.Allow("203.0.113.1") {
		t.Fatalf("expected deny once burst is spent")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	clock := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, 1).WithClock(func() time.Time { return clock })

	if !rl.Allow("203.0.113.1") {
		t.Fatalf("first request should pass")
	}
	if rl.Allow("203.0.113.1") {
		t.Fatalf("expected deny with the bucket empty")
	}

	// 2 tokens/sec: half a second buys the next request.
	clock = clock.Add(500 * time.Millisecond)
	if !rl.Allow("203.0.113.1") {
		t.Fatalf("expected allow after refill")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	clock := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1).WithClock(func() time.Time { return clock })

	if !rl.Allow("203.0.113.1") {
		t.Fatalf("first client should pass")
	}
	if rl.Allow("203.0.113.1") {
		t.Fatalf("first client should be exhausted")
	}
	if !rl.Allow("203.0.113.2") {
		t.Fatalf("second client should have its own bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	clock := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 1).WithClock(func() time.Time { return clock })
	handler := rateLimitWith(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("203.0.113.1:40000"); rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	// Same client from a different source port shares the bucket.
	rec := send("203.0.113.1:40001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
	if rec := send("203.0.113.9:40000"); rec.Code != http.StatusOK {
		t.Fatalf("expected other clients to pass, got %d", rec.Code)
	}
}
