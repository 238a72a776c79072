package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/transferhub/internal/infrastructure/metrics"
	"github.com/iho/transferhub/internal/usecase"
)

// Cache implements usecase.Cache using Redis.
type Cache struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client, m *metrics.Metrics) *Cache {
	return &Cache{
		client:  client,
		prefix:  "cache:",
		metrics: m,
	}
}

// Get retrieves a value by key. A missing key is usecase.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", usecase.ErrCacheMiss
	}
	if err != nil {
		c.recordError("get")
		return "", err
	}
	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.recordError("set")
		return err
	}
	return nil
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.recordError("del")
		return err
	}
	return nil
}

func (c *Cache) recordError(op string) {
	if c.metrics != nil {
		c.metrics.RedisErrors.WithLabelValues("cache_" + op).Inc()
	}
}
