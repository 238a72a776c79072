package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseCaseOutcome(t *testing.T) {
	for in, want := range map[string]CaseOutcome{
		"completed": CaseOutcomeCompleted,
		" FAILED ":  CaseOutcomeFailed,
		"Completed": CaseOutcomeCompleted,
	} {
		got, err := ParseCaseOutcome(in)
		if err != nil || got != want {
			t.Errorf("ParseCaseOutcome(%q) = %q, %v", in, got, err)
		}
	}

	for _, in := range []string{"", "resolved", "partial"} {
		if _, err := ParseCaseOutcome(in); !errors.Is(err, ErrInvalidOutcome) || !IsValidationError(err) {
			t.Errorf("ParseCaseOutcome(%q) error = %v", in, err)
		}
	}
}

func TestReconciliationCase_ConcernsSalaryCycle(t *testing.T) {
	tests := []struct {
		name string
		c    ReconciliationCase
		want bool
	}{
		{"batch outcome", ReconciliationCase{Kind: CaseBatchOutcomeUnknown}, true},
		{"unrecorded batch", ReconciliationCase{Kind: CaseLedgerWriteFailed, Payload: map[string]any{PayloadSubject: SubjectSalaryCycle}}, true},
		{"unrecorded transfer", ReconciliationCase{Kind: CaseLedgerWriteFailed, Payload: map[string]any{"kind": "transfer"}}, false},
		{"unknown transfer", ReconciliationCase{Kind: CaseOutcomeUnknown}, false},
	}

	for _, tt := range tests {
		if got := tt.c.ConcernsSalaryCycle(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReconciliationCase_PayloadStrings(t *testing.T) {
	c := ReconciliationCase{Payload: map[string]any{
		"fresh":  []string{"e1", "e2"},
		"stored": []any{"e1", 7, "e2"},
		"scalar": "e1",
	}}

	want := []string{"e1", "e2"}
	if got := c.PayloadStrings("fresh"); !reflect.DeepEqual(got, want) {
		t.Errorf("fresh: got %v", got)
	}
	if got := c.PayloadStrings("stored"); !reflect.DeepEqual(got, want) {
		t.Errorf("stored: got %v", got)
	}
	if got := c.PayloadStrings("scalar"); got != nil {
		t.Errorf("scalar: got %v", got)
	}
	if got := c.PayloadStrings("missing"); got != nil {
		t.Errorf("missing: got %v", got)
	}
}

func TestReconciliationCase_Resolve(t *testing.T) {
	c := &ReconciliationCase{Status: CaseStatusOpen}
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	if err := c.Resolve("ops-1", "completed", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != CaseStatusResolved || c.ResolvedBy != "ops-1" || !c.ResolvedAt.Equal(at) {
		t.Fatalf("unexpected case %+v", c)
	}
	if err := c.Resolve("ops-2", "", at); !errors.Is(err, ErrCaseAlreadyResolved) {
		t.Fatalf("expected ErrCaseAlreadyResolved, got %v", err)
	}
}
