package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func requestFrom(e *echo.Echo, path, ip string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5}

	e := echo.New()
	handler := RateLimit(cfg)(okHandler)

	for i := 0; i < 5; i++ {
		c, rec := requestFrom(e, "/api/emergency-response", "10.0.0.1")
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2}

	e := echo.New()
	handler := RateLimit(cfg)(okHandler)

	for i := 0; i < 2; i++ {
		c, _ := requestFrom(e, "/", "10.0.0.1")
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	c, rec := requestFrom(e, "/", "10.0.0.1")
	err := handler(c)
	if err == nil {
		t.Fatal("expected error for rate-limited request")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}

	retryVal, parseErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if parseErr != nil || retryVal < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_PerIPIsolation(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1}

	e := echo.New()
	handler := RateLimit(cfg)(okHandler)

	c, _ := requestFrom(e, "/", "10.0.0.1")
	if err := handler(c); err != nil {
		t.Fatalf("first request: expected no error, got %v", err)
	}
	c, _ = requestFrom(e, "/", "10.0.0.1")
	if err := handler(c); err == nil {
		t.Fatal("second request from same IP: expected rate limit error")
	}
	c, _ = requestFrom(e, "/", "10.0.0.2")
	if err := handler(c); err != nil {
		t.Fatalf("first request from other IP: expected no error, got %v", err)
	}
}

func TestRateLimit_SkipsHealth(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, SkipPrefixes: []string{"/health"}}

	e := echo.New()
	handler := RateLimit(cfg)(okHandler)

	for i := 0; i < 5; i++ {
		c, _ := requestFrom(e, "/health", "10.0.0.1")
		if err := handler(c); err != nil {
			t.Fatalf("health request %d: expected no error, got %v", i+1, err)
		}
	}
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 10 {
		t.Errorf("expected RequestsPerSecond 10, got %f", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 20 {
		t.Errorf("expected BurstSize 20, got %d", cfg.BurstSize)
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	now := time.Now()
	b := newTokenBucket(2, 1, now)
	if !b.allow(now) {
		t.Fatal("expected first token")
	}
	if b.allow(now) {
		t.Fatal("expected bucket to be empty")
	}
	if !b.allow(now.Add(600 * time.Millisecond)) {
		t.Error("expected bucket to refill after 600ms at 2 rps")
	}
}

func TestTokenBucket_RetryAfterWithZeroRate(t *testing.T) {
	now := time.Now()
	b := newTokenBucket(0, 1, now)
	b.allow(now)
	if ra := b.retryAfter(); ra != 1 {
		t.Errorf("expected retryAfter 1 for zero rate, got %d", ra)
	}
}

func TestRateLimiter_GetBucketReuses(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	b1 := l.getBucket("key1")
	if b1 == nil {
		t.Fatal("expected non-nil bucket")
	}
	if b2 := l.getBucket("key1"); b1 != b2 {
		t.Error("expected same bucket instance for same key")
	}
	if b3 := l.getBucket("key2"); b1 == b3 {
		t.Error("expected different bucket for different key")
	}
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	now := time.Now()
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})
	l.now = func() time.Time { return now }

	l.getBucket("old")
	now = now.Add(10 * time.Minute)
	l.getBucket("fresh")

	l.evictIdle(5 * time.Minute)

	if _, ok := l.buckets["old"]; ok {
		t.Error("expected idle bucket to be evicted")
	}
	if _, ok := l.buckets["fresh"]; !ok {
		t.Error("expected fresh bucket to remain")
	}
}
