// Package redis keeps resolved long URLs in Redis, keyed by short code.
//
// Every code also has a generation counter. Invalidate bumps it, and Set only
// stores a URL when the counter still holds the value read before the store
// lookup, so a fill racing an edit or delete cannot bring back the old URL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shortlink/internal/metrics"
)

const (
	defaultKeyPrefix = "shortlink:link:"
	defaultTTL       = time.Hour
	// generationTTL must outlive any single resolution by far; an expired
	// counter restarts at zero.
	generationTTL = 24 * time.Hour
)

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrStaleGeneration = errors.New("cache generation changed")
)

type Option func(*LinkCache)

func WithKeyPrefix(prefix string) Option {
	return func(c *LinkCache) {
		c.keyPrefix = prefix
	}
}

// WithTTL sets the lifetime of cached entries. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *LinkCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// LinkCache is a read-through cache of long URLs with per-code generations.
type LinkCache struct {
	client    goredis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

func NewLinkCache(client goredis.UniversalClient, opts ...Option) *LinkCache {
	c := &LinkCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect opens a client and checks it answers a ping.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	const op = "adapter.cache.redis.Connect"

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	return client, nil
}

func (c *LinkCache) Get(ctx context.Context, shortCode string) (string, error) {
	const op = "adapter.cache.redis.LinkCache.Get"

	longURL, err := c.client.Get(ctx, c.key(shortCode)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheMiss).Inc()
			return "", fmt.Errorf("%s: %w", op, ErrCacheMiss)
		}

		metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheError).Inc()
		return "", fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	metrics.CacheLookupsTotal.WithLabelValues(metrics.CacheHit).Inc()
	return longURL, nil
}

// Generation returns the current generation of shortCode. A code that was
// never invalidated is at generation zero.
func (c *LinkCache) Generation(ctx context.Context, shortCode string) (int64, error) {
	const op = "adapter.cache.redis.LinkCache.Generation"

	gen, err := c.client.Get(ctx, c.generationKey(shortCode)).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return 0, fmt.Errorf("%s: failed to get generation: %w", op, err)
	}

	return gen, nil
}

// Set stores longURL under shortCode if its generation is still gen.
// Otherwise it returns ErrStaleGeneration and leaves the cache untouched.
func (c *LinkCache) Set(ctx context.Context, shortCode, longURL string, gen int64) error {
	const op = "adapter.cache.redis.LinkCache.Set"

	genKey := c.generationKey(shortCode)

	err := c.client.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}

		if cur != gen {
			return ErrStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, c.key(shortCode), longURL, c.ttl)
			return nil
		})

		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, goredis.TxFailedErr):
		return fmt.Errorf("%s: %w", op, ErrStaleGeneration)
	default:
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}
}

// Invalidate drops the cached URL of shortCode and bumps its generation in
// one transaction.
func (c *LinkCache) Invalidate(ctx context.Context, shortCode string) error {
	const op = "adapter.cache.redis.LinkCache.Invalidate"

	genKey := c.generationKey(shortCode)

	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, c.key(shortCode))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: failed to invalidate key: %w", op, err)
	}

	return nil
}

func (c *LinkCache) key(shortCode string) string {
	return c.keyPrefix + shortCode
}

// Short codes never contain ':', so generation keys cannot clash with URL keys.
func (c *LinkCache) generationKey(shortCode string) string {
	return c.keyPrefix + shortCode + ":gen"
}
