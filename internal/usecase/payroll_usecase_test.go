package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/usecase"
)

const (
	testCycle        = "cycle-2026-10"
	testDebitAccount = "0010012345999"
)

func seedCycle(h *harness) *domain.SalaryCycle {
	cycle := &domain.SalaryCycle{
		ID:           testCycle,
		CompanyID:    testCompany,
		SalaryMonth:  "2026-10",
		DebitAccount: testDebitAccount,
		Currency:     "LYD",
	}
	entries := []*domain.SalaryEntry{
		{ID: "e1", EmployeeID: "emp-1", AccountType: domain.AccountTypeBank, AccountNumber: "0030011111001", Amount: dec("1500")},
		{ID: "e2", EmployeeID: "emp-2", AccountType: domain.AccountTypeBank, AccountNumber: "0030022222001", Amount: dec("2000")},
		{ID: "e3", EmployeeID: "emp-3", AccountType: domain.AccountTypeBank, AccountNumber: "0030033333001", Amount: dec("1750.25")},
		{ID: "wallet", EmployeeID: "emp-4", AccountType: domain.AccountTypeWallet, AccountNumber: "0910000000", Amount: dec("300")},
		{ID: "short", EmployeeID: "emp-5", AccountType: domain.AccountTypeBank, AccountNumber: "003004444400", Amount: dec("400")},
	}
	for _, e := range entries {
		if err := cycle.AddEntry(e); err != nil {
			panic(err)
		}
	}
	h.salary.Seed(cycle)
	h.pricing.EnableCategory(testPackage, domain.CategorySalaryPayment, true)
	return cycle
}

func postInput() usecase.PostCycleInput {
	return usecase.PostCycleInput{CycleID: testCycle, UserID: "hr-1"}
}

func TestPostCycle_PartialSuccess(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)
	h.pricing.SetRule(domain.PricingRule{
		CategoryID:        domain.CategorySalaryPayment,
		FixedFee:          dec("1"),
		CommissionAccount: testCommission,
		Narrative:         "Salaries",
	})

	var sent domain.GroupTransferOrder
	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			sent = o
			return &domain.GroupTransferResult{
				BatchID:       o.BatchID,
				HeaderSuccess: true,
				LinesParsed:   true,
				Lines: []domain.LineOutcome{
					{LineID: o.Lines[0].LineID, CreditAccount: o.Lines[0].CreditAccount, Code: "S"},
					{LineID: o.Lines[1].LineID, CreditAccount: o.Lines[1].CreditAccount, Code: "F", Description: "account closed"},
					// no line id echoed: matched by credited account
					{CreditAccount: o.Lines[2].CreditAccount, Code: "s"},
				},
			}, nil
		})

	result, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.NoError(t, err)

	require.Len(t, sent.Lines, 3)
	require.Equal(t, testDebitAccount, sent.DebitAccount)
	require.Equal(t, "LYD", sent.Currency)
	require.Len(t, sent.BatchID, 16)
	for _, line := range sent.Lines {
		require.Len(t, line.LineID, 16)
		require.NotEqual(t, sent.BatchID, line.LineID)
		require.True(t, line.Commission.Equal(dec("1")), "commission %s", line.Commission)
		require.Equal(t, testCommission, line.CommissionAccount)
		require.Equal(t, "Salaries", line.Narrative)
	}

	require.Equal(t, 3, result.Submitted)
	require.Equal(t, []string{"e1", "e3"}, result.Succeeded)
	require.Equal(t, []string{"e2"}, result.Failed)
	require.True(t, result.Posted)
	require.Equal(t, sent.BatchID, result.BatchReference)

	stored, err := h.salary.GetCycleWithEntries(context.Background(), testCycle)
	require.NoError(t, err)
	require.NotNil(t, stored.PostedAt)
	require.Equal(t, "hr-1", *stored.PostedByUserID)
	require.Equal(t, sent.BatchID, stored.BatchReference)

	transferred := map[string]bool{}
	for _, e := range stored.Entries {
		transferred[e.ID] = e.IsTransferred
		if e.IsTransferred {
			require.NotNil(t, e.TransferredAt)
			require.Equal(t, "hr-1", *e.PostedByUserID)
		}
	}
	require.Equal(t, map[string]bool{"e1": true, "e2": false, "e3": true, "wallet": false, "short": false}, transferred)
	require.False(t, h.locker.Held("payroll:cycle:"+testCycle))
}

func TestPostCycle_NoRuleMeansNoCommission(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			lines := make([]domain.LineOutcome, len(o.Lines))
			for i, l := range o.Lines {
				require.True(t, l.Commission.IsZero())
				lines[i] = domain.LineOutcome{LineID: l.LineID, Code: "S"}
			}
			return &domain.GroupTransferResult{BatchID: o.BatchID, HeaderSuccess: true, LinesParsed: true, Lines: lines}, nil
		})

	result, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 3)
	require.Empty(t, result.Failed)
}

func TestPostCycle_LineCodesOverrideFailingHeader(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			lines := make([]domain.LineOutcome, len(o.Lines))
			for i, l := range o.Lines {
				lines[i] = domain.LineOutcome{LineID: l.LineID, Code: "F"}
			}
			lines[1].Code = "S"
			return &domain.GroupTransferResult{
				BatchID:       o.BatchID,
				HeaderSuccess: false,
				ReturnMessage: "partially processed",
				LinesParsed:   true,
				Lines:         lines,
			}, nil
		})

	result, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.NoError(t, err)
	require.Equal(t, []string{"e2"}, result.Succeeded)
	require.True(t, result.Posted)
}

func TestPostCycle_NothingSucceededLeavesCycleDraft(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			lines := make([]domain.LineOutcome, len(o.Lines))
			for i, l := range o.Lines {
				lines[i] = domain.LineOutcome{LineID: l.LineID, Code: "F"}
			}
			return &domain.GroupTransferResult{BatchID: o.BatchID, LinesParsed: true, Lines: lines}, nil
		})

	result, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.NoError(t, err)
	require.False(t, result.Posted)
	require.Empty(t, result.Succeeded)
	require.Len(t, result.Failed, 3)

	stored, err := h.salary.GetCycleWithEntries(context.Background(), testCycle)
	require.NoError(t, err)
	require.Nil(t, stored.PostedAt)
	require.Nil(t, stored.PostedByUserID)
}

func TestPostCycle_PreconditionsSkipGateway(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness)
		wantErr error
	}{
		{
			name: "cycle not found",
			setup: func(h *harness) {
				h.pricing.EnableCategory(testPackage, domain.CategorySalaryPayment, true)
			},
			wantErr: domain.ErrCycleNotFound,
		},
		{
			name: "already posted",
			setup: func(h *harness) {
				cycle := seedCycle(h)
				at := time.Now().UTC()
				by := "hr-0"
				cycle.PostedAt = &at
				cycle.PostedByUserID = &by
				h.salary.Seed(cycle)
			},
			wantErr: domain.ErrCycleAlreadyPosted,
		},
		{
			name: "salary category disabled",
			setup: func(h *harness) {
				seedCycle(h)
				h.pricing.EnableCategory(testPackage, domain.CategorySalaryPayment, false)
			},
			wantErr: domain.ErrCategoryDisabled,
		},
		{
			name: "no eligible entries",
			setup: func(h *harness) {
				h.pricing.EnableCategory(testPackage, domain.CategorySalaryPayment, true)
				h.salary.Seed(&domain.SalaryCycle{
					ID:           testCycle,
					CompanyID:    testCompany,
					DebitAccount: testDebitAccount,
					Entries: []*domain.SalaryEntry{
						{ID: "wallet", AccountType: domain.AccountTypeWallet, AccountNumber: "0910000000", Amount: dec("10")},
					},
				})
			},
			wantErr: domain.ErrNoEligibleEntries,
		},
		{
			name: "posting in progress",
			setup: func(h *harness) {
				seedCycle(h)
				_, err := h.locker.Acquire(context.Background(), "payroll:cycle:"+testCycle, time.Minute)
				if err != nil {
					panic(err)
				}
			},
			wantErr: domain.ErrPostingInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			_, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
			require.ErrorIs(t, err, tt.wantErr)
			require.Zero(t, h.salary.Saves())
		})
	}
}

func TestPostCycle_UnreadableLines(t *testing.T) {
	unreadable := func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
		return &domain.GroupTransferResult{BatchID: o.BatchID, HeaderSuccess: true, LinesParsed: false}, nil
	}

	t.Run("unknown by default", func(t *testing.T) {
		h := newHarness(t)
		seedCycle(h)
		h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).DoAndReturn(unreadable)

		uc := h.payrollUseCase(usecase.PayrollConfig{})
		_, err := uc.PostCycle(context.Background(), postInput())
		require.ErrorIs(t, err, domain.ErrBatchOutcomeUnknown)
		require.Zero(t, h.salary.Saves())

		cases := h.cases.Cases()
		require.Len(t, cases, 1)
		require.Equal(t, domain.CaseBatchOutcomeUnknown, cases[0].Kind)
		require.Equal(t, testCycle, cases[0].ResourceID)

		// The header said success, so the lines may be paid. Sending again could pay twice.
		_, err = uc.PostCycle(context.Background(), postInput())
		require.ErrorIs(t, err, domain.ErrCycleAwaitingReview)
		require.Len(t, h.cases.Cases(), 1)
	})

	t.Run("header trusted when configured", func(t *testing.T) {
		h := newHarness(t)
		seedCycle(h)
		h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).DoAndReturn(unreadable)

		result, err := h.payrollUseCase(usecase.PayrollConfig{TrustHeaderOnUnparsed: true}).
			PostCycle(context.Background(), postInput())
		require.NoError(t, err)
		require.Equal(t, []string{"e1", "e2", "e3"}, result.Succeeded)
		require.True(t, result.Posted)
	})
}

func TestPostCycle_HeaderFailureWithoutLines(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			return &domain.GroupTransferResult{BatchID: o.BatchID, ReturnMessage: "debit account blocked"}, nil
		})

	_, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.ErrorIs(t, err, domain.ErrGatewayRejected)

	var rejected *domain.GatewayRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, "debit account blocked", rejected.Message)
	require.Zero(t, h.salary.Saves())
}

func TestPostCycle_GatewayOutcomeUnknownOpensCase(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("read timeout: %w", domain.ErrOutcomeUnknown)).
		Times(1)

	uc := h.payrollUseCase(usecase.PayrollConfig{})
	_, err := uc.PostCycle(context.Background(), postInput())
	require.ErrorIs(t, err, domain.ErrOutcomeUnknown)

	cases := h.cases.Cases()
	require.Len(t, cases, 1)
	require.Equal(t, domain.CaseBatchOutcomeUnknown, cases[0].Kind)
	require.Equal(t, domain.SubjectSalaryCycle, cases[0].Payload[domain.PayloadSubject])
	require.Equal(t, []string{"e1", "e2", "e3"}, cases[0].Payload[domain.PayloadEntries])
	require.False(t, h.locker.Held("payroll:cycle:"+testCycle))

	_, err = uc.PostCycle(context.Background(), postInput())
	require.ErrorIs(t, err, domain.ErrCycleAwaitingReview)
	require.Zero(t, h.salary.Saves())
	require.Equal(t, 1.0, counterValue(t, h.metrics.PayrollPostings.WithLabelValues("conflict")))
}

func TestPostCycle_OpenCaseLookupFailureSkipsGateway(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)
	h.cases.HasOpenErr = errors.New("connection refused")

	_, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrCycleAwaitingReview)
	require.Zero(t, h.salary.Saves())
}

func TestPostCycle_ResolvedCaseAllowsRetry(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)
	h.cases.Open(context.Background(), domain.CaseBatchOutcomeUnknown, "B-old", testCycle, nil)
	h.cases.Close(testCycle)

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			lines := make([]domain.LineOutcome, len(o.Lines))
			for i, l := range o.Lines {
				lines[i] = domain.LineOutcome{LineID: l.LineID, Code: "S"}
			}
			return &domain.GroupTransferResult{BatchID: o.BatchID, HeaderSuccess: true, LinesParsed: true, Lines: lines}, nil
		})

	result, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.NoError(t, err)
	require.True(t, result.Posted)
}

func TestPostCycle_PersistenceFailureOpensCase(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)
	h.salary.SavePostingFunc = func(context.Context, usecase.Transaction, *domain.SalaryCycle, []*domain.SalaryEntry) error {
		return errors.New("connection refused")
	}

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			return &domain.GroupTransferResult{
				BatchID:       o.BatchID,
				HeaderSuccess: true,
				LinesParsed:   true,
				Lines:         []domain.LineOutcome{{LineID: o.Lines[0].LineID, Code: "S"}},
			}, nil
		})

	result, err := h.payrollUseCase(usecase.PayrollConfig{}).PostCycle(context.Background(), postInput())
	require.ErrorIs(t, err, domain.ErrPostingUnrecorded)
	require.NotNil(t, result)
	require.Equal(t, []string{"e1"}, result.Succeeded)

	cases := h.cases.Cases()
	require.Len(t, cases, 1)
	require.Equal(t, domain.CaseLedgerWriteFailed, cases[0].Kind)
	require.Equal(t, result.BatchReference, cases[0].Reference)
	require.Equal(t, domain.SubjectSalaryCycle, cases[0].Payload[domain.PayloadSubject])
	require.Equal(t, []string{"e1"}, cases[0].Payload[domain.PayloadSucceeded])
}

func TestPostCycle_ConcurrentPostIsRejected(t *testing.T) {
	h := newHarness(t)
	seedCycle(h)

	started := make(chan struct{})
	release := make(chan struct{})

	h.gateway.EXPECT().PostGroupTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.GroupTransferOrder) (*domain.GroupTransferResult, error) {
			close(started)
			<-release
			lines := make([]domain.LineOutcome, len(o.Lines))
			for i, l := range o.Lines {
				lines[i] = domain.LineOutcome{LineID: l.LineID, Code: "S"}
			}
			return &domain.GroupTransferResult{BatchID: o.BatchID, HeaderSuccess: true, LinesParsed: true, Lines: lines}, nil
		}).Times(1)

	uc := h.payrollUseCase(usecase.PayrollConfig{})

	done := make(chan error, 1)
	go func() {
		_, err := uc.PostCycle(context.Background(), postInput())
		done <- err
	}()

	<-started
	_, err := uc.PostCycle(context.Background(), postInput())
	require.ErrorIs(t, err, domain.ErrPostingInProgress)

	close(release)
	require.NoError(t, <-done)

	_, err = uc.PostCycle(context.Background(), postInput())
	require.ErrorIs(t, err, domain.ErrCycleAlreadyPosted)
}
