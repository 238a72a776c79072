package handler

import (
	"context"
	"net/http"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/usecase"
)

// TransferService defines the behavior needed to debit a company.
type TransferService interface {
	DebitForService(ctx context.Context, input usecase.DebitInput) (*usecase.TransferResult, error)
}

// RefundService defines the behavior needed to refund a debit.
type RefundService interface {
	RefundByOriginalReference(ctx context.Context, input usecase.RefundInput) (*usecase.TransferResult, error)
	RefundLedgerEntry(ctx context.Context, input usecase.RefundEntryInput) (*usecase.TransferResult, error)
}

// TransferHandler handles debit and refund requests.
type TransferHandler struct {
	transferUC TransferService
	refundUC   RefundService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService, refundUC RefundService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC, refundUC: refundUC}
}

// Debit charges a company for a service through the gateway.
func (h *TransferHandler) Debit(w http.ResponseWriter, r *http.Request) {
	var req dto.DebitRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.transferUC.DebitForService(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to debit", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK(dto.TransferResultFromUseCase(result)))
}

// Refund reverses a debit identified by its correlation reference.
func (h *TransferHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.refundUC.RefundByOriginalReference(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to refund", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK(dto.TransferResultFromUseCase(result)))
}
