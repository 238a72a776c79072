package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPricingRule_Commission(t *testing.T) {
	tests := []struct {
		name     string
		pct      string
		fee      string
		amount   string
		expected string
	}{
		{name: "percentage and fee", pct: "1.5", fee: "2", amount: "1000", expected: "17"},
		{name: "rounds half up", pct: "1", fee: "0", amount: "1.25", expected: "0.013"},
		{name: "rounds down below half", pct: "0.1", fee: "0", amount: "1.234", expected: "0.001"},
		{name: "flat fee only", pct: "0", fee: "5.5", amount: "300", expected: "5.5"},
		{name: "no commission", pct: "0", fee: "0", amount: "300", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := PricingRule{
				Percentage: decimal.RequireFromString(tt.pct),
				FixedFee:   decimal.RequireFromString(tt.fee),
			}
			got := rule.Commission(decimal.RequireFromString(tt.amount))
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestPeriod_StartAndKey(t *testing.T) {
	// Thursday
	at := time.Date(2026, 10, 15, 17, 45, 0, 0, time.UTC)

	tests := []struct {
		period Period
		start  time.Time
		key    string
	}{
		{PeriodDaily, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), "2026-10-15"},
		{PeriodWeekly, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), "2026-W42"},
		{PeriodMonthly, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), "2026-10"},
	}

	for _, tt := range tests {
		if got := tt.period.Start(at); !got.Equal(tt.start) {
			t.Errorf("%s start: expected %s, got %s", tt.period, tt.start, got)
		}
		if got := tt.period.Key(at); got != tt.key {
			t.Errorf("%s key: expected %s, got %s", tt.period, tt.key, got)
		}
	}

	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	if got := PeriodWeekly.Start(sunday); got.Day() != 12 {
		t.Errorf("sunday should belong to the week starting on the 12th, got %s", got)
	}
}

func TestEvaluateLimits(t *testing.T) {
	limits := []TransferLimit{
		{Period: PeriodDaily, MinAmount: decimal.NewFromInt(10), MaxAmount: decimal.NewFromInt(1000)},
		{Period: PeriodMonthly, MaxAmount: decimal.NewFromInt(5000)},
	}

	t.Run("within limits", func(t *testing.T) {
		usage := map[Period]decimal.Decimal{PeriodDaily: decimal.NewFromInt(500)}
		if err := EvaluateLimits(limits, decimal.NewFromInt(500), usage); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("below minimum", func(t *testing.T) {
		err := EvaluateLimits(limits, decimal.NewFromInt(5), nil)
		if !errors.Is(err, ErrBelowMinimum) {
			t.Fatalf("expected ErrBelowMinimum, got %v", err)
		}
	})

	t.Run("monthly cap exceeded", func(t *testing.T) {
		usage := map[Period]decimal.Decimal{PeriodMonthly: decimal.NewFromInt(4800)}
		err := EvaluateLimits(limits, decimal.NewFromInt(300), usage)
		if !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("expected ErrLimitExceeded, got %v", err)
		}
		var limitErr *LimitError
		if !errors.As(err, &limitErr) || limitErr.Period != PeriodMonthly {
			t.Fatalf("expected monthly LimitError, got %v", err)
		}
	})

	t.Run("zero max is uncapped", func(t *testing.T) {
		open := []TransferLimit{{Period: PeriodDaily}}
		if err := EvaluateLimits(open, decimal.NewFromInt(1_000_000), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestQuote_SecondLegEnabled(t *testing.T) {
	q := Quote{Commission: decimal.NewFromInt(2), Rule: PricingRule{ApplySecondLeg: true}}
	if !q.SecondLegEnabled() {
		t.Fatal("expected second leg")
	}
	q.Commission = decimal.Zero
	if q.SecondLegEnabled() {
		t.Fatal("zero commission must suppress the second leg")
	}
	q.Commission = decimal.NewFromInt(2)
	q.Rule.ApplySecondLeg = false
	if q.SecondLegEnabled() {
		t.Fatal("rule without second leg must suppress it")
	}
}
