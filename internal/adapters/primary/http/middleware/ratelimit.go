package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rendis/resume-forge/internal/adapters/primary/http/dto"
	"github.com/rendis/resume-forge/internal/core/entity"
	"github.com/rendis/resume-forge/internal/core/port"
)

// RateLimitOptions tunes the per-IP token bucket.
type RateLimitOptions struct {
	// PerMinute is the steady refill budget.
	PerMinute int
	// Burst is the bucket capacity: how far a client may run ahead of the
	// refill rate.
	Burst int
	// Skip lists paths exempt from limiting.
	Skip []string
}

func (o *RateLimitOptions) withDefaults() {
	if o.PerMinute <= 0 {
		o.PerMinute = 60
	}
	if o.Burst <= 0 {
		o.Burst = 20
	}
	if o.Skip == nil {
		o.Skip = []string{"/health", "/metrics"}
	}
}

// bucket is the per-IP state persisted under ratelimit:{ip}.
type bucket struct {
	Tokens    float64   `json:"tokens"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RateLimiter is a token bucket per client IP, with state in the shared KV
// backend so every replica sees the same counters. Backend failures fail
// open: limiting is protection, not a dependency.
type RateLimiter struct {
	kv     port.KeyValueStore
	opts   RateLimitOptions
	logger *slog.Logger
	now    func() time.Time
}

func NewRateLimiter(kv port.KeyValueStore, opts RateLimitOptions, logger *slog.Logger) *RateLimiter {
	opts.withDefaults()
	return &RateLimiter{kv: kv, opts: opts, logger: logger, now: time.Now}
}

// Handler is the gin middleware entry point.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, path := range rl.opts.Skip {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		ip := ClientIP(c)
		remaining, retryAfter, allowed := rl.take(c, ip)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.opts.PerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(rl.now().Add(time.Duration(retryAfter)*time.Second).Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorBody(entity.RateLimitError(retryAfter)))
			return
		}
		c.Next()
	}
}

// take spends one token from the client's bucket. It reports the remaining
// budget, the wait in seconds until a token is available, and whether the
// request may proceed.
func (rl *RateLimiter) take(c *gin.Context, ip string) (remaining, retryAfter int, allowed bool) {
	refillPerSec := float64(rl.opts.PerMinute) / 60.0
	capacity := float64(rl.opts.Burst)
	allowed = true

	err := rl.kv.Update(c.Request.Context(), "ratelimit:"+ip, func(current []byte) ([]byte, time.Duration, error) {
		b := bucket{Tokens: capacity, UpdatedAt: rl.now()}
		if current != nil {
			if err := json.Unmarshal(current, &b); err == nil {
				elapsed := rl.now().Sub(b.UpdatedAt).Seconds()
				b.Tokens = math.Min(capacity, b.Tokens+elapsed*refillPerSec)
				b.UpdatedAt = rl.now()
			}
		}

		if b.Tokens >= 1 {
			b.Tokens--
			allowed = true
		} else {
			allowed = false
			retryAfter = int(math.Ceil((1 - b.Tokens) / refillPerSec))
		}
		remaining = int(b.Tokens)

		raw, err := json.Marshal(b)
		if err != nil {
			return nil, 0, err
		}
		// The entry lives for the rate window; longer when a drained bucket
		// needs more than a window to refill. Either way an expired entry
		// reads as a full bucket.
		ttl := time.Minute
		if refill := time.Duration(math.Ceil(capacity/refillPerSec)) * time.Second; refill > ttl {
			ttl = refill
		}
		return raw, ttl, nil
	})
	if err != nil {
		rl.logger.WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request",
			slog.String("ip", ip), slog.Any("error", err))
		return rl.opts.Burst, 0, true
	}
	if retryAfter < 1 && !allowed {
		retryAfter = 1
	}
	return remaining, retryAfter, allowed
}

// ClientIP resolves the client address: first X-Forwarded-For hop when
// present, otherwise the connection address.
func ClientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}
