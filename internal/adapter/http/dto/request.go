package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

// StatementDateLayout is the date format accepted by the statement query.
const StatementDateLayout = "2006-01-02"

// PricingOverride replaces the stored pricing rule for one debit.
type PricingOverride struct {
	Percentage        decimal.Decimal `json:"percentage"`
	FixedFee          decimal.Decimal `json:"fixed_fee"`
	DebitCode         string          `json:"debit_code"`
	CreditCode        string          `json:"credit_code"`
	DebitCode2        string          `json:"debit_code_2,omitempty"`
	CreditCode2       string          `json:"credit_code_2,omitempty"`
	CommissionAccount string          `json:"commission_account,omitempty"`
	Narrative         string          `json:"narrative,omitempty"`
	ApplySecondLeg    bool            `json:"apply_second_leg"`
}

// DebitRequest represents a request to debit a company for a service.
type DebitRequest struct {
	UserID                string           `json:"user_id"`
	CompanyID             string           `json:"company_id"`
	PackageID             string           `json:"package_id,omitempty"`
	CategoryID            string           `json:"category_id"`
	SourceAccount         string           `json:"source_account"`
	DestinationAccount    string           `json:"destination_account"`
	Amount                decimal.Decimal  `json:"amount"`
	Currency              string           `json:"currency,omitempty"`
	Pricing               *PricingOverride `json:"pricing,omitempty"`
	ApplySecondLeg        *bool            `json:"apply_second_leg,omitempty"`
	CommissionOnRecipient bool             `json:"commission_on_recipient"`
	ExchangeRate          decimal.Decimal  `json:"exchange_rate"`
	Mode                  string           `json:"mode,omitempty"`
	Narrative             string           `json:"narrative,omitempty"`
	Description           string           `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DebitRequest) ToUseCaseInput() (usecase.DebitInput, error) {
	mode, err := parseMode(r.Mode)
	if err != nil {
		return usecase.DebitInput{}, err
	}

	input := usecase.DebitInput{
		UserID:                r.UserID,
		CompanyID:             r.CompanyID,
		PackageID:             r.PackageID,
		CategoryID:            r.CategoryID,
		SourceAccount:         r.SourceAccount,
		DestinationAccount:    r.DestinationAccount,
		Amount:                r.Amount,
		Currency:              r.Currency,
		ApplySecondLeg:        r.ApplySecondLeg,
		CommissionOnRecipient: r.CommissionOnRecipient,
		ExchangeRate:          r.ExchangeRate,
		Mode:                  mode,
		Narrative:             r.Narrative,
		Description:           r.Description,
	}

	if p := r.Pricing; p != nil {
		input.Pricing = &domain.PricingRule{
			CategoryID:        r.CategoryID,
			Percentage:        p.Percentage,
			FixedFee:          p.FixedFee,
			DebitCode:         p.DebitCode,
			CreditCode:        p.CreditCode,
			DebitCode2:        p.DebitCode2,
			CreditCode2:       p.CreditCode2,
			CommissionAccount: p.CommissionAccount,
			Narrative:         p.Narrative,
			ApplySecondLeg:    p.ApplySecondLeg,
		}
	}

	return input, nil
}

func parseMode(s string) (domain.TransferMode, error) {
	switch mode := domain.TransferMode(strings.ToUpper(strings.TrimSpace(s))); mode {
	case "":
		return "", nil
	case domain.TransferModeB2B, domain.TransferModeB2C:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown transfer mode %q", s)
	}
}

// RefundRequest represents a refund identified by the original correlation reference.
type RefundRequest struct {
	OriginalReference  string          `json:"original_reference"`
	Currency           string          `json:"currency,omitempty"`
	SourceAccount      string          `json:"source_account"`
	DestinationAccount string          `json:"destination_account"`
	Amount             decimal.Decimal `json:"amount"`
	Note               string          `json:"note,omitempty"`
	UserID             string          `json:"user_id"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundRequest) ToUseCaseInput() usecase.RefundInput {
	return usecase.RefundInput{
		OriginalReference:  r.OriginalReference,
		Currency:           r.Currency,
		SourceAccount:      r.SourceAccount,
		DestinationAccount: r.DestinationAccount,
		Amount:             r.Amount,
		Note:               r.Note,
		UserID:             r.UserID,
	}
}

// RefundEntryRequest represents a refund of a stored ledger entry.
type RefundEntryRequest struct {
	Note   string `json:"note,omitempty"`
	UserID string `json:"user_id"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundEntryRequest) ToUseCaseInput(entryID string) usecase.RefundEntryInput {
	return usecase.RefundEntryInput{
		EntryID: entryID,
		Note:    r.Note,
		UserID:  r.UserID,
	}
}

// PostCycleRequest represents a request to post a salary cycle.
type PostCycleRequest struct {
	UserID string `json:"user_id"`
}

// ToUseCaseInput converts to use case input.
func (r *PostCycleRequest) ToUseCaseInput(cycleID string) usecase.PostCycleInput {
	return usecase.PostCycleInput{
		CycleID: cycleID,
		UserID:  r.UserID,
	}
}

// ResolveCaseRequest represents an operator closing a reconciliation case.
type ResolveCaseRequest struct {
	ResolvedBy    string   `json:"resolved_by"`
	Outcome       string   `json:"outcome"`
	BankReference string   `json:"bank_reference,omitempty"`
	PaidEntries   []string `json:"paid_entries,omitempty"`
	Note          string   `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ResolveCaseRequest) ToUseCaseInput(caseID string) usecase.ResolveCaseInput {
	return usecase.ResolveCaseInput{
		CaseID:        caseID,
		ResolvedBy:    r.ResolvedBy,
		Note:          r.Note,
		Outcome:       domain.CaseOutcome(r.Outcome),
		BankReference: r.BankReference,
		PaidEntries:   r.PaidEntries,
	}
}

// ParseStatementQuery builds a statement query from "from", "to" and "count" parameters.
func ParseStatementQuery(account, from, to, count string) (domain.StatementQuery, error) {
	q := domain.StatementQuery{Account: account}

	var err error
	if from != "" {
		if q.From, err = time.Parse(StatementDateLayout, from); err != nil {
			return q, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if to != "" {
		if q.To, err = time.Parse(StatementDateLayout, to); err != nil {
			return q, fmt.Errorf("invalid to date: %w", err)
		}
	}
	if count != "" {
		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid count %q", count)
		}
		q.Count = n
	}

	return q, nil
}
