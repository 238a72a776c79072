package dto

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

func TestDebitRequest_ToUseCaseInput(t *testing.T) {
	leg := true
	req := &DebitRequest{
		UserID:             "user-1",
		CompanyID:          "company-1",
		CategoryID:         "bill_payment",
		SourceAccount:      "0010012345001",
		DestinationAccount: "0020098765001",
		Amount:             decimal.RequireFromString("125.5"),
		Currency:           "LYD",
		ApplySecondLeg:     &leg,
		Mode:               "b2b",
		Pricing: &PricingOverride{
			Percentage: decimal.RequireFromString("1.5"),
			FixedFee:   decimal.NewFromInt(2),
			DebitCode:  "110",
			CreditCode: "210",
		},
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Mode != domain.TransferModeB2B {
		t.Errorf("expected B2B mode, got %q", got.Mode)
	}
	if got.ApplySecondLeg == nil || !*got.ApplySecondLeg {
		t.Errorf("expected apply_second_leg override, got %v", got.ApplySecondLeg)
	}
	if got.Pricing == nil || got.Pricing.CategoryID != "bill_payment" || !got.Pricing.FixedFee.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected pricing override, got %+v", got.Pricing)
	}
	if !got.Amount.Equal(decimal.RequireFromString("125.5")) || got.CompanyID != "company-1" {
		t.Errorf("unexpected input %+v", got)
	}
}

func TestDebitRequest_ToUseCaseInput_Mode(t *testing.T) {
	tests := []struct {
		mode        string
		want        domain.TransferMode
		expectError bool
	}{
		{mode: "", want: ""},
		{mode: "B2C", want: domain.TransferModeB2C},
		{mode: " b2b ", want: domain.TransferModeB2B},
		{mode: "P2P", expectError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.mode, func(t *testing.T) {
			req := &DebitRequest{Mode: tt.mode}
			got, err := req.ToUseCaseInput()
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Mode != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.Mode)
			}
		})
	}
}

func TestRefundRequests_ToUseCaseInput(t *testing.T) {
	req := &RefundRequest{
		OriginalReference:  "2610151005000001",
		SourceAccount:      "0020098765001",
		DestinationAccount: "0010012345001",
		Amount:             decimal.NewFromInt(10),
		UserID:             "user-1",
	}
	got := req.ToUseCaseInput()
	if got.OriginalReference != req.OriginalReference || !got.Amount.Equal(req.Amount) || got.UserID != "user-1" {
		t.Fatalf("unexpected input %+v", got)
	}

	entryReq := &RefundEntryRequest{Note: "duplicate charge", UserID: "ops-1"}
	want := usecase.RefundEntryInput{EntryID: "entry-1", Note: "duplicate charge", UserID: "ops-1"}
	if got := entryReq.ToUseCaseInput("entry-1"); got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestPostCycleAndResolveRequests(t *testing.T) {
	post := (&PostCycleRequest{UserID: "user-1"}).ToUseCaseInput("cycle-1")
	if post != (usecase.PostCycleInput{CycleID: "cycle-1", UserID: "user-1"}) {
		t.Fatalf("unexpected post input %+v", post)
	}

	resolve := (&ResolveCaseRequest{
		ResolvedBy:  "ops-1",
		Outcome:     "completed",
		PaidEntries: []string{"e1", "e2"},
		Note:        "ok",
	}).ToUseCaseInput("case-1")
	want := usecase.ResolveCaseInput{
		CaseID:      "case-1",
		ResolvedBy:  "ops-1",
		Note:        "ok",
		Outcome:     domain.CaseOutcomeCompleted,
		PaidEntries: []string{"e1", "e2"},
	}
	if !reflect.DeepEqual(resolve, want) {
		t.Fatalf("unexpected resolve input %+v", resolve)
	}
}

func TestParseStatementQuery(t *testing.T) {
	q, err := ParseStatementQuery("0010012345001", "2026-10-01", "2026-10-15", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.ByDate() || !q.From.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected query %+v", q)
	}

	q, err = ParseStatementQuery("0010012345001", "", "", "25")
	if err != nil || q.Count != 25 || q.ByDate() {
		t.Fatalf("expected count query, got %+v err=%v", q, err)
	}

	for _, bad := range [][3]string{
		{"15/10/2026", "", ""},
		{"", "tomorrow", ""},
		{"", "", "-1"},
		{"", "", "5abc"},
	} {
		if _, err := ParseStatementQuery("0010012345001", bad[0], bad[1], bad[2]); err == nil {
			t.Errorf("expected error for %v", bad)
		}
	}

	var parseErr *time.ParseError
	_, err = ParseStatementQuery("0010012345001", "2026-13-01", "", "")
	if !errors.As(err, &parseErr) {
		t.Errorf("expected wrapped time.ParseError, got %v", err)
	}
}
