package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/iho/transferhub/internal/infrastructure/logger"
	"github.com/iho/transferhub/internal/usecase"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayHeader         = "X-Idempotency-Replay"

	processingMarker = "processing"
	maxKeyedBody     = 1 << 20
)

var errBodyTooLarge = errors.New("request body too large")

// IdempotencyMiddleware makes POST and PUT requests carrying an
// Idempotency-Key safe to retry. The first request for a key runs; later
// ones get its stored 2xx response, or 409 while it is still running.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, log zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: log}
}

// storedResponse is the value a completed request leaves under its key.
type storedResponse struct {
	Status      int             `json:"status"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Body        json.RawMessage `json:"body"`
}

func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		clientKey := r.Header.Get(IdempotencyKeyHeader)
		if clientKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		key := r.URL.Path + ":" + clientKey

		fingerprint, err := fingerprintRequest(r)
		if err != nil {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		exists, stored, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}
		if exists {
			m.answerDuplicate(w, stored, fingerprint)
			return
		}

		var body bytes.Buffer
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&body)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		// settle the key even if the client hung up
		ctx := context.WithoutCancel(r.Context())
		m.settle(ctx, key, status, fingerprint, body.Bytes())
	})
}

func (m *IdempotencyMiddleware) answerDuplicate(w http.ResponseWriter, stored []byte, fingerprint string) {
	if len(stored) == 0 || string(stored) == processingMarker {
		writeJSONError(w, http.StatusConflict, "request with this idempotency key is still in progress")
		return
	}

	if !gjson.ValidBytes(stored) || !gjson.GetBytes(stored, "status").Exists() {
		// bare body written before responses were wrapped
		replay(w, http.StatusOK, stored)
		return
	}

	if fp := gjson.GetBytes(stored, "fingerprint").String(); fp != "" && fp != fingerprint {
		writeJSONError(w, http.StatusUnprocessableEntity, "idempotency key was used with a different request")
		return
	}
	replay(w, int(gjson.GetBytes(stored, "status").Int()), []byte(gjson.GetBytes(stored, "body").Raw))
}

// settle stores a 2xx response under key and frees the key otherwise.
func (m *IdempotencyMiddleware) settle(ctx context.Context, key string, status int, fingerprint string, body []byte) {
	log := logger.WithContext(ctx, m.logger).With().Str("idempotency_key", key).Logger()

	if status >= 200 && status < 300 && json.Valid(body) {
		payload, err := json.Marshal(storedResponse{Status: status, Fingerprint: fingerprint, Body: body})
		if err == nil {
			if err := m.store.Update(ctx, key, payload, m.ttl); err != nil {
				log.Warn().Err(err).Msg("failed to store idempotent response")
			}
			return
		}
	}

	if err := m.store.Release(ctx, key); err != nil {
		log.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

// fingerprintRequest hashes method, path and body, restoring the body for
// the next handler.
func fingerprintRequest(r *http.Request) (string, error) {
	h := sha256.New()
	h.Write([]byte(r.Method + " " + r.URL.Path + "\n"))

	if r.Body != nil && r.Body != http.NoBody {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxKeyedBody+1))
		_ = r.Body.Close()
		if err != nil {
			return "", err
		}
		if len(raw) > maxKeyedBody {
			return "", errBodyTooLarge
		}
		h.Write(raw)
		r.Body = io.NopCloser(bytes.NewReader(raw))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func replay(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(ReplayHeader, "true")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}
