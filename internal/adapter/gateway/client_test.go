package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

type staticRefs struct{ ref string }

func (s staticRefs) New() string { return s.ref }

type capturedRequest struct {
	Path    string
	Header  map[string]string
	Details map[string]any
}

func newTestClient(t *testing.T, baseURL string, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		BaseURL:      baseURL,
		System:       "TRANSFERHUB",
		UserName:     "svc-transfers",
		Language:     "en",
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryInitial: time.Millisecond,
		RetryMax:     5 * time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	c, err := New(cfg, staticRefs{ref: "2610151005LOOKUP"}, zerolog.Nop(), metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 10, 15, 8, 5, 0, 0, time.UTC) }
	return c
}

type recorder struct {
	mu       sync.Mutex
	requests []capturedRequest
}

func (r *recorder) all() []capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]capturedRequest(nil), r.requests...)
}

// recordingServer replies with reply and stores every decoded request.
func recordingServer(t *testing.T, status int, reply string) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		var env struct {
			Header  map[string]string `json:"Header"`
			Details map[string]any    `json:"Details"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Errorf("request is not valid JSON: %v", err)
		}

		rec.mu.Lock()
		rec.requests = append(rec.requests, capturedRequest{Path: r.URL.Path, Header: env.Header, Details: env.Details})
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

const successReply = `{"Header":{"ReturnCode":"Success","ReturnMessage":"done","referenceId":"CBS000123"},"Details":{}}`

func TestPostTransfer_ScenarioWithoutSecondLeg(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, successReply)
	c := newTestClient(t, srv.URL)

	ack, err := c.PostTransfer(context.Background(), domain.TransferOrder{
		Reference:          "2610151005A1B2C3",
		Currency:           "LYD",
		SourceAccount:      "0010102030445",
		DestinationAccount: "0010102030999",
		Amount:             decimal.RequireFromString("1500.125"),
		DebitCode:          "D01",
		CreditCode:         "C01",
		Narrative:          "service fee",
	})
	require.NoError(t, err)
	require.Equal(t, "CBS000123", ack.BankReference)
	require.Equal(t, "2610151005A1B2C3", ack.Reference)

	reqs := captured.all()
	require.Len(t, reqs, 1)
	req := reqs[0]
	require.Equal(t, pathPostTransfer, req.Path)

	require.Equal(t, "TRANSFERHUB", req.Header["system"])
	require.Equal(t, "2610151005A1B2C3", req.Header["referenceId"])
	require.Equal(t, "svc-transfers", req.Header["userName"])
	require.Equal(t, "010203", req.Header["customerNumber"])
	require.Equal(t, "2026-10-15T08:05:00", req.Header["requestTime"])
	require.Equal(t, "en", req.Header["language"])

	require.Equal(t, "000000001500125", req.Details["@TRFAMT"])
	require.Equal(t, "N", req.Details["@APLYTRN2"])
	require.Equal(t, "000000000000000", req.Details["@TRFAMT2"])
	require.Equal(t, "LYD", req.Details["@TRFCCY"])
	require.Equal(t, "0010102030445", req.Details["@SRCACC"])
	require.Equal(t, "0010102030999", req.Details["@DSTACC"])
	require.Equal(t, "", req.Details["@SRCACC2"])
	require.Equal(t, "", req.Details["@DSTACC2"])
	require.Equal(t, "", req.Details["@DTCD2"])
	require.Equal(t, "", req.Details["@CTCD2"])
	require.Equal(t, "D01", req.Details["@DTCD"])
	require.Equal(t, "C01", req.Details["@CTCD"])
	require.Equal(t, "service fee", req.Details["@NR2"])
}

func TestPostTransfer_SecondLeg(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, successReply)
	c := newTestClient(t, srv.URL)

	_, err := c.PostTransfer(context.Background(), domain.TransferOrder{
		Reference:          "2610151005A1B2C4",
		Currency:           "LYD",
		SourceAccount:      "0010102030445",
		DestinationAccount: "0010102030999",
		Amount:             decimal.NewFromInt(100),
		SecondLeg: &domain.SecondLeg{
			SourceAccount:      "0010102030445",
			DestinationAccount: "0019990000001",
			Amount:             decimal.RequireFromString("2.5"),
			DebitCode:          "D02",
			CreditCode:         "C02",
		},
	})
	require.NoError(t, err)

	d := captured.all()[0].Details
	require.Equal(t, "Y", d["@APLYTRN2"])
	require.Equal(t, "000000000002500", d["@TRFAMT2"])
	require.Equal(t, "0010102030445", d["@SRCACC2"])
	require.Equal(t, "0019990000001", d["@DSTACC2"])
	require.Equal(t, "D02", d["@DTCD2"])
	require.Equal(t, "C02", d["@CTCD2"])
}

func TestPostTransfer_BankReferenceFallsBackToRequest(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{"Header":{"ReturnCode":"SUCCESS"}}`)
	c := newTestClient(t, srv.URL)

	ack, err := c.PostTransfer(context.Background(), domain.TransferOrder{
		Reference: "2610151005A1B2C5", Currency: "LYD",
		SourceAccount: "0010102030445", DestinationAccount: "0010102030999",
		Amount: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	require.Equal(t, "2610151005A1B2C5", ack.BankReference)
}

func TestPostTransfer_Rejected(t *testing.T) {
	srv, _ := recordingServer(t, http.StatusOK, `{"Header":{"ReturnCode":"E102","ReturnMessage":"insufficient funds"}}`)
	c := newTestClient(t, srv.URL)

	_, err := c.PostTransfer(context.Background(), validOrder())
	require.ErrorIs(t, err, domain.ErrGatewayRejected)

	var rejected *domain.GatewayRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, "E102", rejected.Code)
	require.Equal(t, "insufficient funds", rejected.Message)
}

func TestPostTransfer_MalformedResponse(t *testing.T) {
	t.Run("garbage is a failure", func(t *testing.T) {
		srv, _ := recordingServer(t, http.StatusOK, `<html>oops</html>`)
		c := newTestClient(t, srv.URL)

		_, err := c.PostTransfer(context.Background(), validOrder())
		require.ErrorIs(t, err, domain.ErrGatewayRejected)
		require.ErrorIs(t, err, domain.ErrMalformedResponse)
	})

	t.Run("broken body with successful header is accepted", func(t *testing.T) {
		srv, _ := recordingServer(t, http.StatusOK, `{"Header":{"ReturnCode":"Success","ReturnMessage":"ok"},"Details":{"x":}`)
		c := newTestClient(t, srv.URL)

		ack, err := c.PostTransfer(context.Background(), validOrder())
		require.NoError(t, err)
		require.Equal(t, validOrder().Reference, ack.BankReference)
	})
}

func TestPostTransfer_RetriesServiceUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(successReply))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)
	_, err := c.PostTransfer(context.Background(), validOrder())
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestPostTransfer_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)
	_, err := c.PostTransfer(context.Background(), validOrder())
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusBadGateway, te.StatusCode)
	require.Equal(t, int32(3), calls.Load())
}

func TestPostTransfer_TimeoutIsUnknownAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(successReply))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })
	_, err := c.PostTransfer(context.Background(), validOrder())
	require.ErrorIs(t, err, domain.ErrOutcomeUnknown)
	require.False(t, errors.Is(err, domain.ErrGatewayUnavailable))
	require.Equal(t, int32(1), calls.Load())
}

func TestPostTransfer_ConnectionRefusedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, func(cfg *Config) { cfg.MaxRetries = 1 })
	_, err := c.PostTransfer(context.Background(), validOrder())
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	require.False(t, errors.Is(err, domain.ErrOutcomeUnknown))
}

func TestPostTransfer_CancelledBeforeDispatch(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, successReply)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PostTransfer(ctx, validOrder())
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, captured.all())
}

func TestPostTransfer_InvalidAmountNeverSent(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, successReply)
	c := newTestClient(t, srv.URL)

	order := validOrder()
	order.Amount = decimal.NewFromInt(-1)
	_, err := c.PostTransfer(context.Background(), order)
	require.ErrorIs(t, err, domain.ErrNegativeAmount)
	require.Empty(t, captured.all())
}

func TestGetCustomerInfo_RetriesTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"Header":{"ReturnCode":"Success"},"Details":{"STCOD":"CORP"}}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL, func(cfg *Config) { cfg.Timeout = 100 * time.Millisecond })
	info, err := c.GetCustomerInfo(context.Background(), "010203")
	require.NoError(t, err)
	require.Equal(t, "CORP", info.StatusCode)
	require.Equal(t, int32(2), calls.Load())
}

func TestGetCustomerInfo_Request(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, `{"Header":{"ReturnCode":"Success"},"Details":{"STCOD":"IND"}}`)
	c := newTestClient(t, srv.URL)

	info, err := c.GetCustomerInfo(context.Background(), "010203")
	require.NoError(t, err)
	require.Equal(t, "IND", info.StatusCode)

	req := captured.all()[0]
	require.Equal(t, pathCustomerInfo, req.Path)
	require.Equal(t, "010203", req.Details["@CID"])
	require.Equal(t, "010203", req.Header["customerNumber"])
	require.Equal(t, "2610151005LOOKUP", req.Header["referenceId"])
}

func TestGetAccounts_PassesDetailsThrough(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, `{"Header":{"ReturnCode":"Success"},"Details":{"Accounts":[{"ACC":"0010102030445","AVB":"100.000"}]}}`)
	c := newTestClient(t, srv.URL)

	list, err := c.GetAccounts(context.Background(), "010203")
	require.NoError(t, err)
	require.JSONEq(t, `{"Accounts":[{"ACC":"0010102030445","AVB":"100.000"}]}`, string(list.Details))

	req := captured.all()[0]
	require.Equal(t, pathAccounts, req.Path)
	require.Equal(t, "Y", req.Details["@GETAVB"])
}

func TestGetStatement_Request(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, `{"Header":{"ReturnCode":"Success"},"Details":{"Transactions":[]}}`)
	c := newTestClient(t, srv.URL)

	_, err := c.GetStatement(context.Background(), domain.StatementQuery{
		Account: "0010102030445",
		From:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	d := captured.all()[0].Details
	require.Equal(t, pathTransactions, captured.all()[0].Path)
	require.Equal(t, "0010102030445", d["@ACC"])
	require.Equal(t, "Y", d["@BYDTE"])
	require.Equal(t, "2026-10-01", d["@FDATE"])
	require.Equal(t, "2026-10-15", d["@TDATE"])
	require.Equal(t, "N", d["@BYNBR"])
}

func TestReverseTransfer(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, successReply)
	c := newTestClient(t, srv.URL)

	ack, err := c.ReverseTransfer(context.Background(), domain.ReversalOrder{
		Reference:          "2610151005REV001",
		OriginalReference:  "2610141000A1B2C3",
		Currency:           "LYD",
		SourceAccount:      "0010102030999",
		DestinationAccount: "0010102030445",
		Amount:             decimal.RequireFromString("1500.125"),
		Narrative:          "refund",
	})
	require.NoError(t, err)
	require.Equal(t, "CBS000123", ack.BankReference)

	req := captured.all()[0]
	require.Equal(t, pathPostTransfer, req.Path)
	require.Equal(t, "", req.Header["customerNumber"])
	require.Equal(t, "2610151005REV001", req.Header["referenceId"])
	require.Equal(t, "2610141000A1B2C3", req.Details["@TRFREFORG"])
	require.Equal(t, "N", req.Details["@APLYTRN2"])
	require.Equal(t, "0010102030999", req.Details["@SRCACC"])
	require.Equal(t, "0010102030445", req.Details["@DSTACC"])
	require.Equal(t, "000000001500125", req.Details["@TRFAMT"])
	require.NotContains(t, req.Details, "@TRFAMT2")
}

func TestReverseTransfer_RequiresOriginalReference(t *testing.T) {
	srv, captured := recordingServer(t, http.StatusOK, successReply)
	c := newTestClient(t, srv.URL)

	_, err := c.ReverseTransfer(context.Background(), domain.ReversalOrder{Reference: "x", Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrMissingReference)
	require.Empty(t, captured.all())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, staticRefs{}, zerolog.Nop(), nil)
	require.Error(t, err)

	_, err = New(Config{BaseURL: "http://gateway"}, nil, zerolog.Nop(), nil)
	require.Error(t, err)
}

func validOrder() domain.TransferOrder {
	return domain.TransferOrder{
		Reference:          "2610151005A1B2C3",
		Currency:           "LYD",
		SourceAccount:      "0010102030445",
		DestinationAccount: "0010102030999",
		Amount:             decimal.NewFromInt(10),
	}
}
