// Package keyvalue provides the TTL key-value backends behind
// port.KeyValueStore: Redis for production and an in-memory store for tests
// and cache-disabled deployments.
package keyvalue

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rendis/resume-forge/internal/core/port"
)

// updateRetries bounds the optimistic-lock retry loop in Update.
const updateRetries = 5

// RedisOptions configures the Redis client.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TLS enables an encrypted connection to the backend.
	TLS bool
	// OpTimeout bounds every single command issued by this store.
	OpTimeout time.Duration
}

// Redis implements port.KeyValueStore on a Redis server.
type Redis struct {
	client    *redis.Client
	opTimeout time.Duration
}

func NewRedis(opts RedisOptions) *Redis {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	ro := &redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.OpTimeout,
		ReadTimeout:  opts.OpTimeout,
		WriteTimeout: opts.OpTimeout,
	}
	if opts.TLS {
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &Redis{client: redis.NewClient(ro), opTimeout: opts.OpTimeout}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrKeyNotFound
	}
	return val, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.client.Del(ctx, key).Err()
}

// Update runs fn under WATCH so concurrent writers cannot interleave between
// the read and the write. Contended attempts are retried a bounded number of
// times.
func (r *Redis) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, time.Duration, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}

		next, ttl, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < updateRetries; i++ {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update of %q lost the optimistic lock %d times: %w", key, updateRetries, err)
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}
