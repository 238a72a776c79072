package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxBankReferenceLength is the width of the bank reference column.
const MaxBankReferenceLength = 32

// TransferStatus is the lifecycle state of a ledger entry.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// IsFinal reports whether no further transition is allowed.
func (s TransferStatus) IsFinal() bool {
	return s == TransferStatusCompleted || s == TransferStatusFailed
}

// TransferKind distinguishes debits from the refunds that compensate them.
type TransferKind string

const (
	TransferKindTransfer TransferKind = "transfer"
	TransferKindRefund   TransferKind = "refund"
)

// TransferMode classifies the counterparty of a transfer.
type TransferMode string

const (
	TransferModeB2B TransferMode = "B2B"
	TransferModeB2C TransferMode = "B2C"
)

// TransferLedgerEntry records one attempt to move money through the gateway.
type TransferLedgerEntry struct {
	ID                    string
	UserID                string
	CompanyID             string
	CategoryID            string
	ServicePackageID      string
	SourceAccount         string
	DestinationAccount    string
	Amount                decimal.Decimal
	Commission            decimal.Decimal
	CommissionOnRecipient bool
	ExchangeRate          decimal.Decimal
	Currency              string
	Mode                  TransferMode
	Kind                  TransferKind
	Status                TransferStatus
	Description           string
	Reference             string
	BankReference         string
	OriginalReference     string
	FailureReason         string
	RequestedAt           time.Time
	CompletedAt           *time.Time
}

// Complete marks the entry as acknowledged by the gateway.
func (e *TransferLedgerEntry) Complete(bankReference string, at time.Time) error {
	if e.Status.IsFinal() {
		return ErrInvalidTransition
	}
	if bankReference == "" {
		bankReference = e.Reference
	}
	if len(bankReference) > MaxBankReferenceLength {
		bankReference = bankReference[:MaxBankReferenceLength]
	}

	e.Status = TransferStatusCompleted
	e.BankReference = bankReference
	e.FailureReason = ""
	e.CompletedAt = &at
	return nil
}

// Fail marks the entry as definitively not executed.
func (e *TransferLedgerEntry) Fail(reason string, at time.Time) error {
	if e.Status.IsFinal() {
		return ErrInvalidTransition
	}

	e.Status = TransferStatusFailed
	e.BankReference = ""
	e.FailureReason = reason
	e.CompletedAt = &at
	return nil
}

// CanRefund reports whether the entry is a completed debit.
func (e *TransferLedgerEntry) CanRefund() error {
	if e.Kind != TransferKindTransfer || e.Status != TransferStatusCompleted {
		return ErrNotRefundable
	}
	return nil
}
