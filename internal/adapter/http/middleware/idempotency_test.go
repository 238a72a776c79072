package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/usecase/mocks"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func newIdempotency(store *fakeIdempotencyStore) *IdempotencyMiddleware {
	return NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())
}

func TestIdempotencyMiddleware_StoreErrorStopsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/debit", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-err")
	rr := httptest.NewRecorder()

	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesKeyOnFailure(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/debit", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-fail")
	rr := httptest.NewRecorder()

	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})).ServeHTTP(rr, req)

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.released) != 1 || store.released[0] != "/api/v1/transfers/debit:key-fail" {
		t.Fatalf("expected key to be released, got %v", store.released)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store should not be consulted for GET")
			return false, nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-get")
	rr := httptest.NewRecorder()

	called := false
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_RejectsInFlightDuplicate(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(processingMarker), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/cycles/c1/post", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-busy")
	rr := httptest.NewRecorder()

	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the first request is in flight")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"entry-1"}}`))
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/debit", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "key-456")
		rr := httptest.NewRecorder()

		mw.Wrap(next).ServeHTTP(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201, got %d", i, rr.Code)
		}
		if got := rr.Body.String(); got != `{"success":true,"data":{"id":"entry-1"}}` {
			t.Fatalf("attempt %d: unexpected body %s", i, got)
		}
		if i == 1 && rr.Header().Get("X-Idempotency-Replay") != "true" {
			t.Fatalf("expected replay header on second attempt")
		}
	}

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_ReplaysLegacyBody(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(`{"cached":true}`), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/debit", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	rr := httptest.NewRecorder()

	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != `{"cached":true}` {
		t.Fatalf("unexpected replay %d %s", rr.Code, rr.Body.String())
	}
}

func TestIdempotencyMiddleware_RejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	mw := NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop())

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/debit", bytes.NewBufferString(body))
		req.Header.Set(IdempotencyKeyHeader, "key-reuse")
		rr := httptest.NewRecorder()
		mw.Wrap(next).ServeHTTP(rr, req)
		return rr
	}

	if rr := send(`{"amount":"10"}`); rr.Code != http.StatusCreated {
		t.Fatalf("expected first call to succeed, got %d", rr.Code)
	}
	if rr := send(`{"amount":"99"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a different payload, got %d", rr.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_HandlerSeesFullBody(t *testing.T) {
	store := &fakeIdempotencyStore{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ledger/E1/refund", bytes.NewBufferString(`{"note":"dup"}`))
	req.Header.Set(IdempotencyKeyHeader, "key-body")

	var seen string
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = string(raw)
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if seen != `{"note":"dup"}` {
		t.Fatalf("handler saw %q", seen)
	}
}

func TestIdempotencyMiddleware_OversizedBody(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store should not be consulted for an oversized body")
			return false, nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers/debit", bytes.NewReader(make([]byte, maxKeyedBody+1)))
	req.Header.Set(IdempotencyKeyHeader, "key-big")
	rr := httptest.NewRecorder()

	newIdempotency(store).Wrap(http.NotFoundHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}
