package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/transferhub/internal/adapter/http/dto"
	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

// LookupService defines the read-only gateway queries exposed over HTTP.
type LookupService interface {
	ListAccounts(ctx context.Context, customerID string) (*domain.AccountList, error)
	Statement(ctx context.Context, query domain.StatementQuery) (*domain.Statement, error)
	CustomerStatus(ctx context.Context, customerID string) (*domain.CustomerInfo, error)
	CustomerOverview(ctx context.Context, customerID string) (*usecase.CustomerOverview, error)
}

// CustomerHandler handles customer and account lookups.
type CustomerHandler struct {
	lookupUC LookupService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(lookupUC LookupService) *CustomerHandler {
	return &CustomerHandler{lookupUC: lookupUC}
}

// Overview returns a customer's status, transfer mode and accounts.
func (h *CustomerHandler) Overview(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	overview, err := h.lookupUC.CustomerOverview(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, "failed to load customer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.CustomerOverviewFromUseCase(customerID, overview)))
}

// Accounts returns a customer's accounts.
func (h *CustomerHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.lookupUC.ListAccounts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.AccountsFromDomain(accounts)))
}

// Status returns a customer's status code.
func (h *CustomerHandler) Status(w http.ResponseWriter, r *http.Request) {
	info, err := h.lookupUC.CustomerStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get customer status", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.CustomerStatusResponse{
		CustomerID: info.CustomerID,
		StatusCode: info.StatusCode,
	}))
}

// Statement returns account transactions by date range (from, to) or by count.
func (h *CustomerHandler) Statement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := dto.ParseStatementQuery(chi.URLParam(r, "account"), q.Get("from"), q.Get("to"), q.Get("count"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid statement query", err.Error())
		return
	}

	statement, err := h.lookupUC.Statement(r.Context(), query)
	if err != nil {
		writeDomainError(w, "failed to get statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(dto.StatementFromDomain(statement)))
}
