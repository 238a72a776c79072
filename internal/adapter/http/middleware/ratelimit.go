package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// RateLimiter throttles callers with one token bucket each. A caller is the
// acting user when X-User-ID is present and the client address otherwise.
// Mount it after chi's RealIP so proxied addresses are already resolved.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	now     func() time.Time
	metrics *metrics.Metrics
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rps requests per second per caller with bursts of burst.
func NewRateLimiter(rps float64, burst int, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
		metrics: m,
	}
}

func (rl *RateLimiter) allow(caller string) bool {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[caller]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[caller] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	return b.limiter.AllowN(now, 1)
}

// retryAfter is the wait, in whole seconds, for one token to refill.
func (rl *RateLimiter) retryAfter() string {
	if rl.rate <= 0 || math.IsInf(float64(rl.rate), 1) {
		return "1"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(rl.rate))))
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(callerKey(r)) {
			if rl.metrics != nil {
				rl.metrics.RateLimitHits.Inc()
			}
			w.Header().Set("Retry-After", rl.retryAfter())
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request) string {
	if user := r.Header.Get(UserIDHeader); user != "" {
		return "user:" + user
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

// CleanupLimiters forgets callers idle for longer than maxIdle and reports
// how many were dropped.
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) int {
	cutoff := rl.now().Add(-maxIdle)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	dropped := 0
	for caller, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, caller)
			dropped++
		}
	}
	return dropped
}
