package domain

import (
	"fmt"
	"strings"
	"time"
)

// CaseKind names the failure that needs manual follow-up.
type CaseKind string

const (
	CaseLedgerWriteFailed   CaseKind = "ledger_write_failed"
	CaseOutcomeUnknown      CaseKind = "outcome_unknown"
	CaseBatchOutcomeUnknown CaseKind = "batch_outcome_unknown"
)

// Payload keys shared by the writers and the resolver of a case.
const (
	PayloadSubject       = "subject"
	PayloadBankReference = "bank_reference"
	PayloadReservations  = "reservations"
	PayloadEntries       = "entries"
	PayloadSucceeded     = "succeeded"

	// SubjectSalaryCycle marks a case whose resource id is a salary cycle rather
	// than a ledger entry.
	SubjectSalaryCycle = "salary_cycle"
)

// CaseOutcome is what the operator found out at the bank.
type CaseOutcome string

const (
	CaseOutcomeCompleted CaseOutcome = "completed"
	CaseOutcomeFailed    CaseOutcome = "failed"
)

// ParseCaseOutcome accepts the two outcomes in any case.
func ParseCaseOutcome(s string) (CaseOutcome, error) {
	switch o := CaseOutcome(strings.ToLower(strings.TrimSpace(s))); o {
	case CaseOutcomeCompleted, CaseOutcomeFailed:
		return o, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidOutcome, s)
}

// CaseStatus is open until an operator resolves it.
type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "open"
	CaseStatusResolved CaseStatus = "resolved"
)

// ReconciliationCase records money that may have moved without a matching local record.
type ReconciliationCase struct {
	ID         string
	Kind       CaseKind
	Reference  string
	ResourceID string
	Payload    map[string]any
	Status     CaseStatus
	NotifiedAt *time.Time
	ResolvedAt *time.Time
	ResolvedBy string
	Note       string
	CreatedAt  time.Time
}

// Resolve closes the case.
func (c *ReconciliationCase) Resolve(by, note string, at time.Time) error {
	if c.Status == CaseStatusResolved {
		return ErrCaseAlreadyResolved
	}
	c.Status = CaseStatusResolved
	c.ResolvedBy = by
	c.Note = note
	c.ResolvedAt = &at
	return nil
}

// ConcernsSalaryCycle reports whether ResourceID names a salary cycle.
func (c *ReconciliationCase) ConcernsSalaryCycle() bool {
	if c.Kind == CaseBatchOutcomeUnknown {
		return true
	}
	subject, _ := c.Payload[PayloadSubject].(string)
	return subject == SubjectSalaryCycle
}

// PayloadStrings reads a list of strings from the payload. Lists read back from
// storage arrive as []any.
func (c *ReconciliationCase) PayloadStrings(key string) []string {
	switch v := c.Payload[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
