package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/usecase"
)

// PayrollService defines the behavior needed by PayrollHandler.
type PayrollService interface {
	PostCycle(ctx context.Context, input usecase.PostCycleInput) (*usecase.PostingResult, error)
}

// PayrollHandler handles salary cycle postings.
type PayrollHandler struct {
	payrollUC PayrollService
}

// NewPayrollHandler creates a new PayrollHandler.
func NewPayrollHandler(payrollUC PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollUC: payrollUC}
}

// Post submits the eligible lines of a salary cycle as one group transfer.
// A partially executed batch is a successful response listing both sides.
func (h *PayrollHandler) Post(w http.ResponseWriter, r *http.Request) {
	cycleID := chi.URLParam(r, "id")
	if cycleID == "" {
		writeError(w, http.StatusBadRequest, "missing cycle ID", "")
		return
	}

	var req dto.PostCycleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.payrollUC.PostCycle(r.Context(), req.ToUseCaseInput(cycleID))
	if err != nil && result != nil {
		// Lines were paid but not recorded; the caller still needs to know which.
		writeJSON(w, statusFor(err), dto.Envelope{
			Success: false,
			Data:    dto.PostingFromUseCase(result),
			Error:   "failed to record salary cycle posting",
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		writeDomainError(w, "failed to post salary cycle", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.PostingFromUseCase(result)))
}
