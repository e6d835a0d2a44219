package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
)

// Cache is the read-path response cache. Get decodes into out and reports
// whether the key was present; misses are not errors.
type Cache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
	DefaultTTL() time.Duration
	Close() error
}

type cache struct {
	log        *logger.Logger
	rdb        *goredis.Client
	metrics    *observability.Metrics
	defaultTTL time.Duration
}

func New(log *logger.Logger, metrics *observability.Metrics) (Cache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttlSec := 300
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			ttlSec = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cache{
		log:        log.With("service", "RedisCache"),
		rdb:        rdb,
		metrics:    metrics,
		defaultTTL: time.Duration(ttlSec) * time.Second,
	}, nil
}

// Key joins cache key parts under the service namespace, so every caller
// builds keys the same way and prefix invalidation stays reliable.
func Key(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, "moviemetric")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, ":")
}

func (c *cache) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			c.metrics.IncCacheMiss()
			return false, nil
		}
		return false, err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			// A corrupt entry behaves like a miss; the caller recomputes.
			c.log.Warn("Dropping undecodable cache entry", "key", key, "error", err.Error())
			_ = c.rdb.Del(ctx, key).Err()
			c.metrics.IncCacheMiss()
			return false, nil
		}
	}
	c.metrics.IncCacheHit()
	return true, nil
}

func (c *cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// InvalidatePrefix removes every key under prefix. SCAN keeps this safe on a
// shared redis; batch jobs call it after rewriting an artifact table.
func (c *cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.rdb.Del(ctx, batch...).Err()
	}
	return nil
}

func (c *cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

func (c *cache) Close() error {
	return c.rdb.Close()
}
