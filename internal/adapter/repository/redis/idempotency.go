package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// processingMarker holds a key while the first request is still running.
const processingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "idempotency:",
		metrics: m,
	}
}

// CheckAndSet claims key with response, or with a processing marker when response is nil.
// If the key was already claimed it returns true and the stored value.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	var value any = processingMarker
	if response != nil {
		value = response
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		s.recordError("setnx")
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.recordError("get")
		return false, nil, err
	}
	return true, existing, nil
}

// Update replaces the processing marker with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, response, ttl).Err(); err != nil {
		s.recordError("set")
		return err
	}
	return nil
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.recordError("del")
		return err
	}
	return nil
}

func (s *IdempotencyStore) recordError(op string) {
	if s.metrics != nil {
		s.metrics.RedisErrors.WithLabelValues("idempotency_" + op).Inc()
	}
}
