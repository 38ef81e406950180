package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/resume-forge/internal/adapters/secondary/keyvalue"
	"github.com/rendis/resume-forge/internal/core/port"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Handler())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/generate", ok)
	r.GET("/health", ok)
	return r
}

func do(r *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBurstThenReject(t *testing.T) {
	rl := NewRateLimiter(keyvalue.NewMemory(), RateLimitOptions{PerMinute: 60, Burst: 5}, slog.Default())
	clock := time.Now()
	rl.now = func() time.Time { return clock }
	r := newLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := do(r, "/generate", "1.2.3.4")
		require.Equal(t, http.StatusOK, w.Code, "request %d within burst", i)
		assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(r, "/generate", "1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "API005")
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(keyvalue.NewMemory(), RateLimitOptions{PerMinute: 60, Burst: 1}, slog.Default())
	clock := time.Now()
	rl.now = func() time.Time { return clock }
	r := newLimitedRouter(rl)

	require.Equal(t, http.StatusOK, do(r, "/generate", "1.2.3.4").Code)
	require.Equal(t, http.StatusTooManyRequests, do(r, "/generate", "1.2.3.4").Code)

	clock = clock.Add(2 * time.Second) // 60/min refills one token per second
	assert.Equal(t, http.StatusOK, do(r, "/generate", "1.2.3.4").Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(keyvalue.NewMemory(), RateLimitOptions{PerMinute: 60, Burst: 1}, slog.Default())
	r := newLimitedRouter(rl)

	require.Equal(t, http.StatusOK, do(r, "/generate", "1.1.1.1").Code)
	require.Equal(t, http.StatusTooManyRequests, do(r, "/generate", "1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, do(r, "/generate", "2.2.2.2").Code,
		"a second client has its own bucket")
}

func TestRateLimiterSkipsHealth(t *testing.T) {
	rl := NewRateLimiter(keyvalue.NewMemory(), RateLimitOptions{PerMinute: 60, Burst: 1}, slog.Default())
	r := newLimitedRouter(rl)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, do(r, "/health", "1.2.3.4").Code)
	}
}

func TestRateLimiterBucketTTL(t *testing.T) {
	rec := &ttlRecordingKV{KeyValueStore: keyvalue.NewMemory()}
	rl := NewRateLimiter(rec, RateLimitOptions{PerMinute: 60, Burst: 20}, slog.Default())
	r := newLimitedRouter(rl)

	require.Equal(t, http.StatusOK, do(r, "/generate", "1.2.3.4").Code)
	assert.Equal(t, time.Minute, rec.last, "bucket state expires with the rate window")

	// A slow refill outlives the window, so the entry must too.
	rec = &ttlRecordingKV{KeyValueStore: keyvalue.NewMemory()}
	rl = NewRateLimiter(rec, RateLimitOptions{PerMinute: 6, Burst: 20}, slog.Default())
	r = newLimitedRouter(rl)

	require.Equal(t, http.StatusOK, do(r, "/generate", "1.2.3.4").Code)
	assert.Equal(t, 200*time.Second, rec.last)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl := NewRateLimiter(unavailableKV{}, RateLimitOptions{PerMinute: 60, Burst: 1}, slog.Default())
	r := newLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, "/generate", "1.2.3.4").Code)
	}
}

func TestClientIPFirstForwardedHop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	r.GET("/", func(c *gin.Context) {
		got = ClientIP(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "9.9.9.9", got)
}

// ttlRecordingKV captures the TTL the limiter persists its bucket with.
type ttlRecordingKV struct {
	port.KeyValueStore
	last time.Duration
}

func (r *ttlRecordingKV) Update(ctx context.Context, key string, fn func([]byte) ([]byte, time.Duration, error)) error {
	return r.KeyValueStore.Update(ctx, key, func(current []byte) ([]byte, time.Duration, error) {
		next, ttl, err := fn(current)
		r.last = ttl
		return next, ttl, err
	})
}

// unavailableKV simulates a down backend for fail-open checks.
type unavailableKV struct{}

var errDown = errors.New("backend down")

func (unavailableKV) Get(context.Context, string) ([]byte, error) { return nil, errDown }
func (unavailableKV) Set(context.Context, string, []byte, time.Duration) error {
	return errDown
}
func (unavailableKV) Delete(context.Context, string) error { return errDown }
func (unavailableKV) Update(context.Context, string, func([]byte) ([]byte, time.Duration, error)) error {
	return errDown
}
func (unavailableKV) Ping(context.Context) error { return errDown }
