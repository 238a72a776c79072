package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryEntry is one employee line of a salary cycle.
type SalaryEntry struct {
	ID             string
	CycleID        string
	EmployeeID     string
	AccountType    string
	AccountNumber  string
	Amount         decimal.Decimal
	Commission     decimal.Decimal
	IsTransferred  bool
	TransferredAt  *time.Time
	PostedByUserID *string
}

// EligibleForBankTransfer reports whether the entry can be paid through a group transfer.
func (e *SalaryEntry) EligibleForBankTransfer() bool {
	return !e.IsTransferred &&
		e.AccountType == AccountTypeBank &&
		IsBankAccountNumber(e.AccountNumber)
}

// SalaryCycle is a company's payroll for one month.
type SalaryCycle struct {
	ID              string
	CompanyID       string
	SalaryMonth     string
	DebitAccount    string
	Currency        string
	CreatedByUserID string
	Total           decimal.Decimal
	BatchReference  string
	PostedAt        *time.Time
	PostedByUserID  *string
	Entries         []*SalaryEntry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPosted reports whether at least one line of the cycle has been paid.
func (c *SalaryCycle) IsPosted() bool {
	return c.PostedAt != nil
}

// AddEntry appends an entry to a draft cycle.
func (c *SalaryCycle) AddEntry(entry *SalaryEntry) error {
	if c.IsPosted() {
		return ErrCycleAlreadyPosted
	}
	if !entry.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	entry.CycleID = c.ID
	c.Entries = append(c.Entries, entry)
	c.recalculate()
	return nil
}

// RemoveEntry drops an untransferred entry from a draft cycle.
func (c *SalaryCycle) RemoveEntry(entryID string) error {
	if c.IsPosted() {
		return ErrCycleAlreadyPosted
	}

	for i, e := range c.Entries {
		if e.ID != entryID {
			continue
		}
		if e.IsTransferred {
			return ErrEntryLocked
		}
		c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
		c.recalculate()
		return nil
	}

	return ErrEntryNotFound
}

// UpdateEntryAmount changes the net amount of an untransferred entry.
func (c *SalaryCycle) UpdateEntryAmount(entryID string, amount decimal.Decimal) error {
	if c.IsPosted() {
		return ErrCycleAlreadyPosted
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	e := c.entry(entryID)
	if e == nil {
		return ErrEntryNotFound
	}
	if e.IsTransferred {
		return ErrEntryLocked
	}

	e.Amount = amount
	c.recalculate()
	return nil
}

// EligibleEntries returns the entries a group transfer can pay.
func (c *SalaryCycle) EligibleEntries() []*SalaryEntry {
	var out []*SalaryEntry
	for _, e := range c.Entries {
		if e.EligibleForBankTransfer() {
			out = append(out, e)
		}
	}
	return out
}

// ApplyPosting marks the given entries transferred and, if any were, stamps the cycle as posted.
// It returns the entries that changed.
func (c *SalaryCycle) ApplyPosting(batchReference string, succeeded []string, userID string, at time.Time) []*SalaryEntry {
	ok := make(map[string]struct{}, len(succeeded))
	for _, id := range succeeded {
		ok[id] = struct{}{}
	}

	var changed []*SalaryEntry
	for _, e := range c.Entries {
		if _, hit := ok[e.ID]; !hit || e.IsTransferred {
			continue
		}
		when := at
		by := userID
		e.IsTransferred = true
		e.TransferredAt = &when
		e.PostedByUserID = &by
		changed = append(changed, e)
	}

	c.BatchReference = batchReference
	if len(changed) > 0 {
		when := at
		by := userID
		c.PostedAt = &when
		c.PostedByUserID = &by
	}
	c.UpdatedAt = at
	return changed
}

func (c *SalaryCycle) entry(id string) *SalaryEntry {
	for _, e := range c.Entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (c *SalaryCycle) recalculate() {
	total := decimal.Zero
	for _, e := range c.Entries {
		total = total.Add(e.Amount)
	}
	c.Total = total
}
