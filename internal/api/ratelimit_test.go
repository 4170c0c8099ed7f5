package api

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, perMinute, burst int) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerMinute: perMinute, BurstSize: burst})
	rl.now = clock.now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestTokenBucket(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucket(3, 1, clock.now)

	for i := 0; i < 3; i++ {
		if !tb.allow() {
			t.Fatalf("request %d denied within capacity", i+1)
		}
	}
	if tb.allow() {
		t.Error("request allowed beyond capacity")
	}

	clock.advance(1500 * time.Millisecond)
	if got := tb.remaining(); got != 1 {
		t.Errorf("remaining() after 1.5s = %d, want 1", got)
	}

	clock.advance(time.Hour)
	if got := tb.remaining(); got != 3 {
		t.Errorf("remaining() never exceeds capacity, got %d", got)
	}
	if got := tb.reset(); !got.Equal(clock.now()) {
		t.Errorf("reset() of a full bucket = %v, want now", got)
	}
}

func TestTokenBucketReset(t *testing.T) {
	clock := newFakeClock()
	tb := newTokenBucket(2, 0.5, clock.now)
	tb.allow()
	tb.allow()

	want := clock.now().Add(4 * time.Second)
	if got := tb.reset(); !got.Equal(want) {
		t.Errorf("reset() = %v, want %v", got, want)
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	rl, clock := newTestLimiter(t, 60, 2)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("burst requests denied")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request allowed with burst 2")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IP shares a bucket")
	}

	clock.advance(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("request denied after refill")
	}
}

func TestNewRateLimiterDefaultBurst(t *testing.T) {
	rl, _ := newTestLimiter(t, 60, 0)
	if rl.config.BurstSize != 10 {
		t.Errorf("BurstSize = %d, want 10", rl.config.BurstSize)
	}
	if got := rl.Remaining("10.0.0.1"); got != 10 {
		t.Errorf("Remaining() = %d, want 10", got)
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl, clock := newTestLimiter(t, 60, 5)
	rl.Allow("10.0.0.1")
	clock.advance(4 * time.Minute)
	rl.Allow("10.0.0.2")
	clock.advance(2 * time.Minute)

	if removed := rl.prune(); removed != 1 {
		t.Errorf("prune() removed %d buckets, want 1", removed)
	}
	rl.mu.RLock()
	_, stale := rl.buckets["10.0.0.1"]
	_, fresh := rl.buckets["10.0.0.2"]
	rl.mu.RUnlock()
	if stale || !fresh {
		t.Errorf("after prune: stale present=%v, fresh present=%v", stale, fresh)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 30, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/samples", nil)
		req.RemoteAddr = "192.0.2.7:5000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := do()
	if first.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "30" {
		t.Errorf("X-RateLimit-Limit = %q, want 30", got)
	}
	if got := first.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	second := do()
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
	if got := second.Header().Get("Retry-After"); got != "3" {
		t.Errorf("Retry-After = %q, want 3", got)
	}
	resp := decodeResponse(t, second)
	if resp.Success || resp.Error == nil || resp.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("unexpected error envelope: %+v", resp)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"remote addr", "", "", "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
		{"forwarded first hop", "203.0.113.5, 10.0.0.1", "", "192.0.2.1:1234", "203.0.113.5"},
		{"invalid forwarded ignored", "not-an-ip", "", "192.0.2.1:1234", "192.0.2.1"},
		{"real ip", "", "203.0.113.9", "192.0.2.1:1234", "203.0.113.9"},
		{"ipv6", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"garbage", "", "", "nowhere", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
