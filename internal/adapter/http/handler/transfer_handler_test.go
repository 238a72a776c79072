package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

type transferServiceStub struct {
	debitFn func(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error)
}

func (s *transferServiceStub) DebitForService(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error) {
	return s.debitFn(ctx, input)
}

type refundServiceStub struct {
	byReferenceFn func(ctx context.Context, input usecase.RefundInput) (*usecase.TransferResult, error)
	byEntryFn     func(ctx context.Context, input usecase.RefundEntryInput) (*usecase.TransferResult, error)
}

func (s *refundServiceStub) RefundByOriginalReference(ctx context.Context, input usecase.RefundInput) (*usecase.TransferResult, error) {
	return s.byReferenceFn(ctx, input)
}

func (s *refundServiceStub) RefundLedgerEntry(ctx context.Context, input usecase.RefundEntryInput) (*usecase.TransferResult, error) {
	return s.byEntryFn(ctx, input)
}

func completedResult(id string) *usecase.TransferResult {
	return &usecase.TransferResult{
		Entry: &domain.TransferLedgerEntry{
			ID:        id,
			Amount:    decimal.NewFromInt(100),
			Kind:      domain.TransferKindTransfer,
			Status:    domain.TransferStatusCompleted,
			Reference: "2610151005000001",
		},
		BankReference: "FT26288ABC",
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) dto.Envelope {
	t.Helper()

	env := dto.Envelope{Data: data}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func TestTransferHandler_Debit_Success(t *testing.T) {
	var captured usecase.DebitInput
	handler := NewTransferHandler(&transferServiceStub{
		debitFn: func(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error) {
			captured = input
			return completedResult("entry-1"), nil
		},
	}, nil)

	body, _ := json.Marshal(dto.DebitRequest{
		UserID:             "user-1",
		CompanyID:          "company-1",
		CategoryID:         "bill_payment",
		SourceAccount:      "0010012345001",
		DestinationAccount: "0020098765001",
		Amount:             decimal.NewFromInt(100),
	})

	req := httptest.NewRequest(http.MethodPost, "/transfers/debit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Debit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.CompanyID != "company-1" || captured.SourceAccount != "0010012345001" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var result dto.TransferResultResponse
	env := decodeEnvelope(t, rec, &result)
	if !env.Success || result.Entry.ID != "entry-1" || result.BankReference != "FT26288ABC" {
		t.Fatalf("unexpected response %+v / %+v", env, result)
	}
}

func TestTransferHandler_Debit_InvalidBody(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		debitFn: func(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error) {
			t.Fatal("DebitForService should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/transfers/debit", bytes.NewBufferString("{bad json"))
	rec := httptest.NewRecorder()

	handler.Debit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Debit_UnknownMode(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{
		debitFn: func(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error) {
			t.Fatal("DebitForService should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/transfers/debit", bytes.NewBufferString(`{"mode":"P2P"}`))
	rec := httptest.NewRecorder()

	handler.Debit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Debit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"limit", &domain.LimitError{Period: domain.PeriodDaily, Limit: "100", Used: "90", Requested: "20"}, http.StatusUnprocessableEntity},
		{"validation", domain.ErrInvalidAccount, http.StatusBadRequest},
		{"rejected", &domain.GatewayRejectedError{Code: "E01", Message: "insufficient funds"}, http.StatusBadGateway},
		{"transport", &domain.TransportError{StatusCode: http.StatusBadGateway}, http.StatusServiceUnavailable},
		{"unknown", domain.ErrOutcomeUnknown, http.StatusAccepted},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				debitFn: func(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error) {
					return nil, tt.err
				},
			}, nil)

			req := httptest.NewRequest(http.MethodPost, "/transfers/debit", bytes.NewBufferString(`{"amount":"10"}`))
			rec := httptest.NewRecorder()
			handler.Debit(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Success || resp.Message != tt.err.Error() {
				t.Fatalf("unexpected error body %+v", resp)
			}
		})
	}
}

func TestTransferHandler_Refund(t *testing.T) {
	var captured usecase.RefundInput
	handler := NewTransferHandler(nil, &refundServiceStub{
		byReferenceFn: func(ctx context.Context, input usecase.RefundInput) (*usecase.TransferResult, error) {
			captured = input
			if input.OriginalReference == "2610151005000009" {
				return nil, domain.ErrAlreadyRefunded
			}
			return completedResult("refund-1"), nil
		},
	})

	body := `{"original_reference":"2610151005000001","source_account":"0020098765001","destination_account":"0010012345001","amount":"25","user_id":"ops-1"}`
	rec := httptest.NewRecorder()
	handler.Refund(rec, httptest.NewRequest(http.MethodPost, "/transfers/refund", bytes.NewBufferString(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured.OriginalReference != "2610151005000001" || !captured.Amount.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected refund input %+v", captured)
	}

	rec = httptest.NewRecorder()
	handler.Refund(rec, httptest.NewRequest(http.MethodPost, "/transfers/refund",
		bytes.NewBufferString(`{"original_reference":"2610151005000009","amount":"25"}`)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate refund, got %d", rec.Code)
	}
}
