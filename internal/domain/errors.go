package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidAccount    = errors.New("account number must be at least 10 characters")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrNegativeAmount    = errors.New("negative amounts cannot be encoded")
	ErrAmountOverflow    = errors.New("amount does not fit the 15-digit wire field")
	ErrInvalidWireAmount = errors.New("wire amount must be 1 to 15 digits")
	ErrMissingReference  = errors.New("original reference is required")
	ErrMissingCustomer   = errors.New("customer id is required")
	ErrInvalidDateRange  = errors.New("statement start date is after end date")

	// Limit and pricing rejections
	ErrCategoryDisabled = errors.New("category disabled for package")
	ErrPricingNotFound  = errors.New("no pricing rule for category")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrBelowMinimum     = errors.New("amount below the minimum allowed")

	// Gateway outcomes
	ErrGatewayUnavailable = errors.New("core banking gateway unavailable")
	ErrGatewayRejected    = errors.New("core banking gateway rejected the request")
	ErrOutcomeUnknown     = errors.New("gateway outcome unknown")
	ErrMalformedResponse  = errors.New("malformed gateway response")

	// Ledger errors
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")
	ErrNotRefundable       = errors.New("only completed transfers can be refunded")
	ErrAlreadyRefunded     = errors.New("transfer already refunded")
	ErrPostingUnrecorded   = errors.New("gateway confirmed the movement but it could not be recorded")
	ErrInvalidTransition   = errors.New("ledger entry is already final")

	// Payroll errors
	ErrCycleNotFound       = errors.New("salary cycle not found")
	ErrCycleAlreadyPosted  = errors.New("salary cycle already posted")
	ErrNoEligibleEntries   = errors.New("no salary entries eligible for bank transfer")
	ErrEntryLocked         = errors.New("salary entry already transferred")
	ErrEntryNotFound       = errors.New("salary entry not found")
	ErrPostingInProgress   = errors.New("salary cycle is being posted")
	ErrBatchOutcomeUnknown = errors.New("batch outcome could not be determined")
	ErrCycleAwaitingReview = errors.New("salary cycle has an unreconciled posting attempt")

	// Reconciliation errors
	ErrCaseNotFound        = errors.New("reconciliation case not found")
	ErrCaseAlreadyResolved = errors.New("reconciliation case already resolved")
	ErrMissingOperator     = errors.New("resolved_by is required")
	ErrInvalidOutcome      = errors.New("outcome must be completed or failed")
	ErrMissingBankRef      = errors.New("bank reference is required to confirm a transfer")
	ErrMissingPaidEntries  = errors.New("paid entries are required to confirm a batch")
)

// LimitError reports which cap rejected an amount.
type LimitError struct {
	Period    Period
	Limit     string
	Used      string
	Requested string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded: used %s + requested %s > max %s", e.Period, e.Used, e.Requested, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}

// GatewayRejectedError carries the gateway's return code and message.
type GatewayRejectedError struct {
	Code    string
	Message string
}

func (e *GatewayRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway rejected request (code %q)", e.Code)
	}
	return fmt.Sprintf("gateway rejected request: %s", e.Message)
}

func (e *GatewayRejectedError) Unwrap() error {
	return ErrGatewayRejected
}

// TransportError is a non-2xx response or a connection failure. It is safe to retry.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway transport error: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGatewayUnavailable}
	}
	return []error{ErrGatewayUnavailable, e.Err}
}

// IsValidationError reports whether err was caught before any side effect.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidAccount),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrAmountOverflow),
		errors.Is(err, ErrAmountTooLarge),
		errors.Is(err, ErrAmountTooSmall),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrMissingReference),
		errors.Is(err, ErrMissingCustomer),
		errors.Is(err, ErrMissingOperator),
		errors.Is(err, ErrInvalidOutcome),
		errors.Is(err, ErrMissingBankRef),
		errors.Is(err, ErrMissingPaidEntries),
		errors.Is(err, ErrInvalidDateRange):
		return true
	}
	return false
}

// IsRejection reports whether err is a limit or pricing rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrCategoryDisabled) ||
		errors.Is(err, ErrPricingNotFound) ||
		errors.Is(err, ErrLimitExceeded) ||
		errors.Is(err, ErrBelowMinimum)
}
