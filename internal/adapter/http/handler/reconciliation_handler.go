package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Get(ctx context.Context, id string) (*domain.ReconciliationCase, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*domain.ReconciliationCase, error)
	Resolve(ctx context.Context, input usecase.ResolveCaseInput) (*domain.ReconciliationCase, error)
}

// ReconciliationHandler handles operator access to reconciliation cases.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// List lists open cases, oldest first.
func (h *ReconciliationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageFromQuery(r)

	cases, err := h.reconUC.ListOpen(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list cases", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.CasesFromDomain(cases)))
}

// Get retrieves a case by ID.
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.reconUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get case", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.CaseFromDomain(c)))
}

// Resolve closes a case.
func (h *ReconciliationHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing case ID", "")
		return
	}

	var req dto.ResolveCaseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	c, err := h.reconUC.Resolve(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, "failed to resolve case", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.CaseFromDomain(c)))
}
