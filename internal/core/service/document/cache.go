package document

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/rendis/resume-forge/internal/core/port"
)

// CacheOptions tunes the two cache tiers.
type CacheOptions struct {
	// Enabled gates the external PDF tier; the source tier is always on.
	Enabled bool
	// TTL applies to stored PDF artifacts.
	TTL time.Duration
	// SourceTTL applies to the in-process markup tier.
	SourceTTL time.Duration
	// OpTimeout bounds each external read/write so a slow backend cannot
	// stall the render path.
	OpTimeout time.Duration
	// SourceCacheBytes caps the in-process markup tier.
	SourceCacheBytes int64
}

func (o *CacheOptions) withDefaults() {
	if o.TTL <= 0 {
		o.TTL = 24 * time.Hour
	}
	if o.SourceTTL <= 0 {
		o.SourceTTL = 12 * time.Hour
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 250 * time.Millisecond
	}
	if o.SourceCacheBytes <= 0 {
		o.SourceCacheBytes = 32 << 20
	}
}

// Cache is the two-tier artifact cache: compiled PDFs live in the external
// KV store, rendered markup in an in-process TTL cache. Every external
// failure is a miss, never an error: the render path always stays available.
type Cache struct {
	kv      port.KeyValueStore
	opts    CacheOptions
	sources *ristretto.Cache[string, string]
	logger  *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

// CacheMetrics is the snapshot served by /metrics.
type CacheMetrics struct {
	Enabled   bool    `json:"enabled"`
	Connected bool    `json:"connected"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Total     int64   `json:"total"`
	HitRate   float64 `json:"hit_rate"`
	Errors    int64   `json:"errors"`
}

func NewCache(kv port.KeyValueStore, opts CacheOptions, logger *slog.Logger) (*Cache, error) {
	opts.withDefaults()

	sources, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: 1e5,
		MaxCost:     opts.SourceCacheBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{kv: kv, opts: opts, sources: sources, logger: logger}, nil
}

func (c *Cache) enabled() bool { return c.opts.Enabled && c.kv != nil }

// GetPDF looks up a compiled artifact. Backend errors count as misses.
func (c *Cache) GetPDF(ctx context.Context, key string) ([]byte, bool) {
	if !c.enabled() {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()

	value, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		c.hits.Add(1)
		return value, true
	case errors.Is(err, port.ErrKeyNotFound):
		c.misses.Add(1)
	default:
		c.errors.Add(1)
		c.misses.Add(1)
		c.logger.WarnContext(ctx, "cache read failed, treating as miss",
			slog.String("key", key), slog.Any("error", err))
	}
	return nil, false
}

// StorePDF writes an artifact with the configured TTL. Failures are logged
// and swallowed; the response has already been produced.
func (c *Cache) StorePDF(ctx context.Context, key string, pdf []byte) {
	if !c.enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()

	if err := c.kv.Set(ctx, key, pdf, c.opts.TTL); err != nil {
		c.errors.Add(1)
		c.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}
}

// GetSource looks up rendered markup in the in-process tier.
func (c *Cache) GetSource(key string) (string, bool) {
	source, ok := c.sources.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return source, ok
}

// StoreSource caches rendered markup, costed by size. The write is flushed
// before returning so a follow-up read observes it.
func (c *Cache) StoreSource(key, source string) {
	c.sources.SetWithTTL(key, source, int64(len(source)), c.opts.SourceTTL)
	c.sources.Wait()
}

// Invalidate drops both tiers for a key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.sources.Del(key)
	if !c.enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
	defer cancel()
	return c.kv.Delete(ctx, key)
}

// Metrics snapshots the counters and probes backend connectivity.
func (c *Cache) Metrics(ctx context.Context) CacheMetrics {
	m := CacheMetrics{
		Enabled: c.enabled(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Errors:  c.errors.Load(),
	}
	m.Total = m.Hits + m.Misses
	if m.Total > 0 {
		m.HitRate = float64(m.Hits) / float64(m.Total)
	}
	if c.enabled() {
		ctx, cancel := context.WithTimeout(ctx, c.opts.OpTimeout)
		defer cancel()
		m.Connected = c.kv.Ping(ctx) == nil
	}
	return m
}
