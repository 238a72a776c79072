package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineSuccessCode marks a group transfer line the gateway executed.
const LineSuccessCode = "S"

// TransferOrder is a single debit, optionally with a commission leg.
type TransferOrder struct {
	Reference          string
	Currency           string
	SourceAccount      string
	DestinationAccount string
	Amount             decimal.Decimal
	DebitCode          string
	CreditCode         string
	Narrative          string
	SecondLeg          *SecondLeg
}

// SecondLeg routes commission to a collection account.
type SecondLeg struct {
	SourceAccount      string
	DestinationAccount string
	Amount             decimal.Decimal
	DebitCode          string
	CreditCode         string
}

// GroupTransferOrder is a payroll batch sent as one gateway call.
type GroupTransferOrder struct {
	BatchID      string
	Currency     string
	DebitAccount string
	Lines        []GroupLine
}

// GroupLine is one credit inside a group transfer.
type GroupLine struct {
	LineID            string
	DebitAccount      string
	CreditAccount     string
	Amount            decimal.Decimal
	Commission        decimal.Decimal
	CommissionAccount string
	Narrative         string
}

// ReversalOrder compensates an earlier transfer identified by its correlation reference.
// Source and destination are already swapped relative to the original debit.
type ReversalOrder struct {
	Reference          string
	OriginalReference  string
	Currency           string
	SourceAccount      string
	DestinationAccount string
	Amount             decimal.Decimal
	Narrative          string
}

// GatewayAck is an accepted money movement.
type GatewayAck struct {
	Reference     string
	BankReference string
	ReturnMessage string
}

// LineOutcome is the gateway's verdict on one group transfer line.
type LineOutcome struct {
	LineID        string
	CreditAccount string
	Code          string
	Description   string
}

// Succeeded reports whether the line was executed.
func (o LineOutcome) Succeeded() bool {
	return strings.EqualFold(strings.TrimSpace(o.Code), LineSuccessCode)
}

// GroupTransferResult is the parsed response to a group transfer.
// LinesParsed is false when the per-line array was missing or unreadable.
type GroupTransferResult struct {
	BatchID       string
	HeaderSuccess bool
	ReturnMessage string
	LinesParsed   bool
	Lines         []LineOutcome
}

// CustomerInfo is the subset of the customer record used for classification.
type CustomerInfo struct {
	CustomerID string
	StatusCode string
}

// StatementQuery selects transactions either by date range or by count.
type StatementQuery struct {
	Account string
	From    time.Time
	To      time.Time
	Count   int
}

// ByDate reports whether the query filters on a date range.
func (q StatementQuery) ByDate() bool {
	return !q.From.IsZero() || !q.To.IsZero()
}

// AccountList and Statement carry the gateway's Details object unchanged.
type AccountList struct {
	CustomerID string
	Details    json.RawMessage
}

type Statement struct {
	Account string
	Details json.RawMessage
}
