package redis

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// ErrLockNotHeld is returned by Release when the lock expired or belongs to someone else.
var ErrLockNotHeld = errors.New("posting lock not held")

// releaseScript deletes the key only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PostingLocker implements usecase.PostingLocker with SET NX and a token-checked delete.
type PostingLocker struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewPostingLocker creates a new PostingLocker.
func NewPostingLocker(client *redis.Client, m *metrics.Metrics) *PostingLocker {
	return &PostingLocker{
		client:  client,
		prefix:  "lock:",
		metrics: m,
	}
}

// Acquire takes key for ttl. It returns domain.ErrPostingInProgress if the key is held.
func (l *PostingLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		l.recordError("acquire")
		return "", err
	}
	if !ok {
		return "", domain.ErrPostingInProgress
	}

	return token, nil
}

// Release frees key if token still owns it.
func (l *PostingLocker) Release(ctx context.Context, key, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Int()
	if err != nil {
		l.recordError("release")
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}

	return nil
}

func (l *PostingLocker) recordError(op string) {
	if l.metrics != nil {
		l.metrics.RedisErrors.WithLabelValues("lock_" + op).Inc()
	}
}
