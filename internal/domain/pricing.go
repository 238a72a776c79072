package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CategorySalaryPayment is the service category payroll postings are priced under.
const CategorySalaryPayment = "salary_payment"

// CommissionScale is the number of decimals commission is rounded to.
const CommissionScale = 3

var hundred = decimal.NewFromInt(100)

// Period is the window a transfer limit aggregates over.
type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Start returns the beginning of the window containing t, in t's location.
// Weeks start on Monday.
func (p Period) Start(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// Key names the window containing t: "2026-10-15", "2026-W42" or "2026-10".
func (p Period) Key(t time.Time) string {
	switch p {
	case PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// PricingRule carries commission and GL codes for one service category.
type PricingRule struct {
	CategoryID        string
	Percentage        decimal.Decimal
	FixedFee          decimal.Decimal
	DebitCode         string
	CreditCode        string
	DebitCode2        string
	CreditCode2       string
	CommissionAccount string
	Narrative         string
	ApplySecondLeg    bool
}

// Commission is amount × percentage / 100 + fixed fee, rounded half-up to three decimals.
func (r PricingRule) Commission(amount decimal.Decimal) decimal.Decimal {
	c := amount.Mul(r.Percentage).Div(hundred).Add(r.FixedFee)
	if c.IsNegative() {
		return decimal.Zero
	}
	return c.Round(CommissionScale)
}

// PackageCategory enables a service category for a service package.
type PackageCategory struct {
	PackageID  string
	CategoryID string
	Enabled    bool
}

// TransferLimit caps the aggregate a company may move per period.
type TransferLimit struct {
	PackageID  string
	CategoryID string
	Currency   string
	Period     Period
	MinAmount  decimal.Decimal
	MaxAmount  decimal.Decimal
}

// CounterKey identifies the limit counter row for a company at time t.
func (l TransferLimit) CounterKey(companyID string, t time.Time) LimitCounterKey {
	return LimitCounterKey{
		CompanyID:  companyID,
		CategoryID: l.CategoryID,
		Currency:   l.Currency,
		Period:     l.Period,
		PeriodKey:  l.Period.Key(t),
	}
}

// LimitCounterKey identifies one reserved aggregate.
type LimitCounterKey struct {
	CompanyID  string
	CategoryID string
	Currency   string
	Period     Period
	PeriodKey  string
}

// EvaluateLimits checks amount against every limit given the current usage per period.
// A zero MaxAmount means the period is uncapped.
func EvaluateLimits(limits []TransferLimit, amount decimal.Decimal, usage map[Period]decimal.Decimal) error {
	for _, l := range limits {
		if l.MinAmount.IsPositive() && amount.LessThan(l.MinAmount) {
			return fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, l.MinAmount.String())
		}
		if !l.MaxAmount.IsPositive() {
			continue
		}
		used := usage[l.Period]
		if used.Add(amount).GreaterThan(l.MaxAmount) {
			return &LimitError{
				Period:    l.Period,
				Limit:     l.MaxAmount.String(),
				Used:      used.String(),
				Requested: amount.String(),
			}
		}
	}
	return nil
}

// Quote is the priced form of a transfer request.
type Quote struct {
	Amount     decimal.Decimal
	Commission decimal.Decimal
	Gross      decimal.Decimal
	Rule       PricingRule
	Limits     []TransferLimit
}

// SecondLegEnabled reports whether a commission leg should be sent to the gateway.
func (q Quote) SecondLegEnabled() bool {
	return q.Rule.ApplySecondLeg && q.Commission.IsPositive()
}
