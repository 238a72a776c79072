package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// dependency is one backing service checked by the readiness endpoint.
type dependency struct {
	name string
	ping func(ctx context.Context) error
}

type HealthHandler struct {
	deps []dependency
}

func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	var deps []dependency
	if pool != nil {
		deps = append(deps, dependency{name: "postgres", ping: pool.Ping})
	}
	if redisClient != nil {
		deps = append(deps, dependency{name: "redis", ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	return newHealthHandler(deps...)
}

func newHealthHandler(deps ...dependency) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Liveness answers as long as the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every backing service in parallel and reports each one.
// Any failure turns the whole answer into 503.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var mu sync.Mutex
	resp := readinessResponse{Status: "ready", Checks: make(map[string]string, len(h.deps))}

	var g errgroup.Group
	for _, p := range h.deps {
		g.Go(func() error {
			result := "ok"
			if err := p.ping(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			resp.Checks[p.name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	for _, result := range resp.Checks {
		if result != "ok" {
			resp.Status = "not_ready"
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, resp)
}
