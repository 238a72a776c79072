package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

// Envelope wraps every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LedgerEntryResponse represents a transfer ledger entry in API responses.
type LedgerEntryResponse struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id,omitempty"`
	CompanyID             string          `json:"company_id"`
	CategoryID            string          `json:"category_id,omitempty"`
	ServicePackageID      string          `json:"service_package_id,omitempty"`
	SourceAccount         string          `json:"source_account"`
	DestinationAccount    string          `json:"destination_account"`
	Amount                decimal.Decimal `json:"amount"`
	Commission            decimal.Decimal `json:"commission"`
	CommissionOnRecipient bool            `json:"commission_on_recipient"`
	ExchangeRate          decimal.Decimal `json:"exchange_rate"`
	Currency              string          `json:"currency"`
	Mode                  string          `json:"mode,omitempty"`
	Kind                  string          `json:"kind"`
	Status                string          `json:"status"`
	Description           string          `json:"description,omitempty"`
	Reference             string          `json:"reference"`
	BankReference         string          `json:"bank_reference,omitempty"`
	OriginalReference     string          `json:"original_reference,omitempty"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	RequestedAt           time.Time       `json:"requested_at"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
}

// LedgerEntryFromDomain converts a domain ledger entry to response.
func LedgerEntryFromDomain(e *domain.TransferLedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:                    e.ID,
		UserID:                e.UserID,
		CompanyID:             e.CompanyID,
		CategoryID:            e.CategoryID,
		ServicePackageID:      e.ServicePackageID,
		SourceAccount:         e.SourceAccount,
		DestinationAccount:    e.DestinationAccount,
		Amount:                e.Amount,
		Commission:            e.Commission,
		CommissionOnRecipient: e.CommissionOnRecipient,
		ExchangeRate:          e.ExchangeRate,
		Currency:              e.Currency,
		Mode:                  string(e.Mode),
		Kind:                  string(e.Kind),
		Status:                string(e.Status),
		Description:           e.Description,
		Reference:             e.Reference,
		BankReference:         e.BankReference,
		OriginalReference:     e.OriginalReference,
		FailureReason:         e.FailureReason,
		RequestedAt:           e.RequestedAt,
		CompletedAt:           e.CompletedAt,
	}
}

// LedgerEntriesFromDomain converts domain ledger entries to responses.
func LedgerEntriesFromDomain(entries []*domain.TransferLedgerEntry) []*LedgerEntryResponse {
	result := make([]*LedgerEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = LedgerEntryFromDomain(e)
	}
	return result
}

// TransferResultResponse represents a completed debit or refund.
type TransferResultResponse struct {
	Entry         *LedgerEntryResponse `json:"entry"`
	BankReference string               `json:"bank_reference"`
	Commission    *decimal.Decimal     `json:"commission,omitempty"`
	Gross         *decimal.Decimal     `json:"gross,omitempty"`
	SecondLeg     bool                 `json:"second_leg"`
}

// TransferResultFromUseCase converts a use case result to response.
func TransferResultFromUseCase(r *usecase.TransferResult) *TransferResultResponse {
	resp := &TransferResultResponse{
		Entry:         LedgerEntryFromDomain(r.Entry),
		BankReference: r.BankReference,
	}
	if q := r.Quote; q != nil {
		resp.Commission = &q.Commission
		resp.Gross = &q.Gross
		resp.SecondLeg = q.SecondLegEnabled()
	}
	return resp
}

// PostingResponse represents the outcome of a salary cycle posting.
type PostingResponse struct {
	CycleID        string   `json:"cycle_id"`
	BatchReference string   `json:"batch_reference"`
	Submitted      int      `json:"submitted"`
	Succeeded      []string `json:"succeeded"`
	Failed         []string `json:"failed"`
	Posted         bool     `json:"posted"`
}

// PostingFromUseCase converts a posting result to response.
func PostingFromUseCase(r *usecase.PostingResult) *PostingResponse {
	resp := &PostingResponse{
		CycleID:        r.CycleID,
		BatchReference: r.BatchReference,
		Submitted:      r.Submitted,
		Succeeded:      r.Succeeded,
		Failed:         r.Failed,
		Posted:         r.Posted,
	}
	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}
	if resp.Failed == nil {
		resp.Failed = []string{}
	}
	return resp
}

// CaseResponse represents a reconciliation case in API responses.
type CaseResponse struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Reference  string         `json:"reference"`
	ResourceID string         `json:"resource_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	Status     string         `json:"status"`
	NotifiedAt *time.Time     `json:"notified_at,omitempty"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy string         `json:"resolved_by,omitempty"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CaseFromDomain converts a domain case to response.
func CaseFromDomain(c *domain.ReconciliationCase) *CaseResponse {
	return &CaseResponse{
		ID:         c.ID,
		Kind:       string(c.Kind),
		Reference:  c.Reference,
		ResourceID: c.ResourceID,
		Payload:    c.Payload,
		Status:     string(c.Status),
		NotifiedAt: c.NotifiedAt,
		ResolvedAt: c.ResolvedAt,
		ResolvedBy: c.ResolvedBy,
		Note:       c.Note,
		CreatedAt:  c.CreatedAt,
	}
}

// CasesFromDomain converts domain cases to responses.
func CasesFromDomain(cases []*domain.ReconciliationCase) []*CaseResponse {
	result := make([]*CaseResponse, len(cases))
	for i, c := range cases {
		result[i] = CaseFromDomain(c)
	}
	return result
}

// CustomerStatusResponse represents a customer's classification.
type CustomerStatusResponse struct {
	CustomerID string `json:"customer_id"`
	StatusCode string `json:"status_code"`
}

// AccountsResponse carries the gateway's account details unchanged.
type AccountsResponse struct {
	CustomerID string          `json:"customer_id"`
	Details    json.RawMessage `json:"details"`
}

// AccountsFromDomain converts an account list to response.
func AccountsFromDomain(a *domain.AccountList) *AccountsResponse {
	return &AccountsResponse{CustomerID: a.CustomerID, Details: rawOrNull(a.Details)}
}

// StatementResponse carries the gateway's statement details unchanged.
type StatementResponse struct {
	Account string          `json:"account"`
	Details json.RawMessage `json:"details"`
}

// StatementFromDomain converts a statement to response.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	return &StatementResponse{Account: s.Account, Details: rawOrNull(s.Details)}
}

// CustomerOverviewResponse combines status, mode and accounts of one customer.
type CustomerOverviewResponse struct {
	CustomerID string          `json:"customer_id"`
	StatusCode string          `json:"status_code"`
	Mode       string          `json:"mode"`
	Accounts   json.RawMessage `json:"accounts"`
}

// CustomerOverviewFromUseCase converts an overview to response.
func CustomerOverviewFromUseCase(customerID string, o *usecase.CustomerOverview) *CustomerOverviewResponse {
	resp := &CustomerOverviewResponse{
		CustomerID: customerID,
		Mode:       string(o.Mode),
		Accounts:   json.RawMessage("null"),
	}
	if o.Customer != nil {
		resp.StatusCode = o.Customer.StatusCode
	}
	if o.Accounts != nil {
		resp.Accounts = rawOrNull(o.Accounts.Details)
	}
	return resp
}

func rawOrNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
