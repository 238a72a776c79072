package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/domain"
)

// LedgerService defines the read behavior needed by LedgerHandler.
type LedgerService interface {
	GetEntry(ctx context.Context, id string) (*domain.TransferLedgerEntry, error)
	GetByReference(ctx context.Context, reference string) (*domain.TransferLedgerEntry, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*domain.TransferLedgerEntry, error)
}

// LedgerHandler handles transfer ledger requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	refundUC RefundService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, refundUC RefundService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, refundUC: refundUC}
}

// Get retrieves a ledger entry by ID.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger entry ID", "")
		return
	}

	entry, err := h.ledgerUC.GetEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get ledger entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.LedgerEntryFromDomain(entry)))
}

// List lists a company's ledger entries, or finds one by reference.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	if reference := r.URL.Query().Get("reference"); reference != "" {
		entry, err := h.ledgerUC.GetByReference(r.Context(), reference)
		if err != nil {
			writeDomainError(w, "failed to get ledger entry", err)
			return
		}
		writeJSON(w, http.StatusOK, dto.OK([]*dto.LedgerEntryResponse{dto.LedgerEntryFromDomain(entry)}))
		return
	}

	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "missing company_id", "")
		return
	}

	limit, offset := pageFromQuery(r)

	entries, err := h.ledgerUC.ListByCompany(r.Context(), companyID, limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list ledger entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.LedgerEntriesFromDomain(entries)))
}

// Refund reverses a completed ledger entry.
func (h *LedgerHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ledger entry ID", "")
		return
	}

	var req dto.RefundEntryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.refundUC.RefundLedgerEntry(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, "failed to refund ledger entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK(dto.TransferResultFromUseCase(result)))
}
