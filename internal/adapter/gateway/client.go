// Package gateway talks to the core banking gateway over HTTP+JSON.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

const maxResponseBytes = 4 << 20

// Gateway endpoints.
const (
	pathPostTransfer      = "/api/mobile/postTransfer"
	pathPostGroupTransfer = "/api/mobile/PostGroupTransfer"
	pathCustomerInfo      = "/api/mobile/GetCustomerInfo"
	pathAccounts          = "/api/mobile/accounts"
	pathTransactions      = "/api/mobile/transactions"
)

// Config holds client configuration.
type Config struct {
	BaseURL      string
	System       string
	UserName     string
	Language     string
	Timeout      time.Duration
	MaxRetries   int
	RetryInitial time.Duration
	RetryMax     time.Duration
	Location     *time.Location
	HTTPClient   *http.Client
}

// ReferenceSource issues correlation references for lookups.
type ReferenceSource interface {
	New() string
}

// Client implements usecase.Gateway.
type Client struct {
	baseURL    string
	cfg        Config
	httpClient *http.Client
	refs       ReferenceSource
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates a gateway client. Every call is bounded by cfg.Timeout.
func New(cfg Config, refs ReferenceSource, logger zerolog.Logger, m *metrics.Metrics) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway base URL is required")
	}
	if refs == nil {
		return nil, errors.New("gateway reference source is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 200 * time.Millisecond
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 2 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		cfg:        cfg,
		httpClient: httpClient,
		refs:       refs,
		logger:     logger.With().Str("component", "gateway").Logger(),
		metrics:    m,
		now:        time.Now,
	}, nil
}

// callMode decides which failures may be retried.
type callMode int

const (
	// moneyMoving calls retry only when the request provably never reached the gateway.
	moneyMoving callMode = iota
	// readOnly calls retry every transport failure.
	readOnly
)

// call posts env to path and returns the raw response body of a 2xx reply.
func (c *Client) call(ctx context.Context, op, path string, env envelope, mode callMode) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}

	start := time.Now()
	attempts := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInitial
	b.MaxInterval = c.cfg.RetryMax
	b.MaxElapsedTime = 0

	var body []byte
	err = backoff.Retry(func() error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}

		attempts++
		if attempts > 1 && c.metrics != nil {
			c.metrics.GatewayRetries.WithLabelValues(op).Inc()
		}

		out, err := c.do(ctx, path, payload, mode)
		if err != nil {
			var te *domain.TransportError
			if errors.As(err, &te) {
				c.logger.Warn().
					Err(err).
					Str("operation", op).
					Str("reference", env.Header.ReferenceID).
					Int("attempt", attempts).
					Msg("gateway transport failure")
				return err
			}
			return backoff.Permanent(err)
		}

		body = out
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx))

	c.observe(op, start, err)

	return body, err
}

func (c *Client) do(ctx context.Context, path string, payload []byte, mode callMode) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if mode == readOnly || neverSent(err) {
			return nil, &domain.TransportError{Err: err}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrOutcomeUnknown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &domain.TransportError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if mode == readOnly {
			return nil, &domain.TransportError{Err: err}
		}
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrOutcomeUnknown, err)
	}

	return body, nil
}

// neverSent reports whether err happened before the request could reach the gateway.
func neverSent(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return false
}

func (c *Client) observe(op string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrOutcomeUnknown):
		outcome = "unknown"
	case errors.Is(err, domain.ErrGatewayUnavailable):
		outcome = "transport"
	default:
		outcome = "error"
	}

	c.metrics.GatewayRequests.WithLabelValues(op, outcome).Inc()
	c.metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
