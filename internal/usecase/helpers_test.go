package usecase_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
	"github.com/iho/transferhub/internal/usecase"
	"github.com/iho/transferhub/internal/usecase/mocks"
)

const (
	testCompany     = "company-1"
	testPackage     = "package-gold"
	testCategory    = "bill_payment"
	testSource      = "0010012345001"
	testDestination = "0020098765001"
	testCommission  = "0099000000001"
)

type harness struct {
	ctrl     *gomock.Controller
	gateway  *mocks.MockGateway
	ledger   *mocks.MockLedgerRepository
	pricing  *mocks.MockPricingRepository
	counters *mocks.MockLimitCounterRepository
	salary   *mocks.MockSalaryRepository
	cases    *mocks.MockCaseRecorder
	locker   *mocks.MockPostingLocker
	refs     *mocks.MockReferenceGenerator
	idGen    *mocks.MockIDGenerator
	txMgr    *mocks.MockTransactionManager
	retrier  *mocks.MockRetrier
	metrics  *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	h := &harness{
		ctrl:     ctrl,
		gateway:  mocks.NewMockGateway(ctrl),
		ledger:   mocks.NewMockLedgerRepository(),
		pricing:  mocks.NewMockPricingRepository(),
		counters: mocks.NewMockLimitCounterRepository(),
		salary:   mocks.NewMockSalaryRepository(),
		cases:    mocks.NewMockCaseRecorder(),
		locker:   mocks.NewMockPostingLocker(),
		refs:     mocks.NewMockReferenceGenerator(),
		idGen:    mocks.NewMockIDGenerator(),
		txMgr:    mocks.NewMockTransactionManager(),
		retrier:  mocks.NewMockRetrier(),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}

	h.pricing.SetPackage(testCompany, testPackage)
	h.pricing.EnableCategory(testPackage, testCategory, true)
	h.pricing.SetRule(domain.PricingRule{
		CategoryID:        testCategory,
		Percentage:        decimal.NewFromInt(1),
		FixedFee:          decimal.RequireFromString("0.5"),
		DebitCode:         "DT01",
		CreditCode:        "CT01",
		DebitCode2:        "DT02",
		CreditCode2:       "CT02",
		CommissionAccount: testCommission,
		Narrative:         "Bill payment",
		ApplySecondLeg:    true,
	})

	return h
}

func (h *harness) pricingUseCase() *usecase.PricingUseCase {
	return usecase.NewPricingUseCase(h.pricing, h.ledger, time.UTC)
}

func (h *harness) transferUseCase(classifier usecase.ModeClassifier) *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(
		h.txMgr,
		h.retrier,
		h.ledger,
		h.counters,
		h.pricingUseCase(),
		classifier,
		h.gateway,
		h.refs,
		h.idGen,
		h.cases,
		usecase.TransferConfig{},
		zerolog.Nop(),
		h.metrics,
	)
}

func (h *harness) refundUseCase() *usecase.RefundUseCase {
	return usecase.NewRefundUseCase(
		h.txMgr,
		h.retrier,
		h.ledger,
		h.counters,
		h.gateway,
		h.refs,
		h.idGen,
		h.cases,
		"",
		zerolog.Nop(),
		h.metrics,
	)
}

func (h *harness) payrollUseCase(cfg usecase.PayrollConfig) *usecase.PayrollUseCase {
	return h.payrollUseCaseWith(h.cases, cfg)
}

func (h *harness) payrollUseCaseWith(cases usecase.CaseTracker, cfg usecase.PayrollConfig) *usecase.PayrollUseCase {
	return usecase.NewPayrollUseCase(
		h.txMgr,
		h.retrier,
		h.salary,
		h.pricing,
		h.gateway,
		h.refs,
		h.locker,
		cases,
		cfg,
		zerolog.Nop(),
		h.metrics,
	)
}

func (h *harness) addLimit(period domain.Period, min, max string) {
	h.pricing.AddLimit(domain.TransferLimit{
		PackageID:  testPackage,
		CategoryID: testCategory,
		Currency:   "LYD",
		Period:     period,
		MinAmount:  decimal.RequireFromString(min),
		MaxAmount:  decimal.RequireFromString(max),
	})
}

func monthlyKey() domain.LimitCounterKey {
	now := time.Now().UTC()
	return domain.LimitCounterKey{
		CompanyID:  testCompany,
		CategoryID: testCategory,
		Currency:   "LYD",
		Period:     domain.PeriodMonthly,
		PeriodKey:  domain.PeriodMonthly.Key(now),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}
