package integration

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/transferhub/internal/adapter/repository/redis"
	"github.com/iho/transferhub/internal/infrastructure/correlation"
	"github.com/iho/transferhub/internal/usecase"
	"github.com/iho/transferhub/tests/testutil"
)

const (
	companyID = "COMP-1"
	packageID = "PKG-GOLD"
	category  = "utility_bill"

	sourceAccount      = "0011234560001"
	destinationAccount = "0027654320001"
)

type stack struct {
	ledgerRepo *postgres.LedgerRepository
	caseRepo   *postgres.ReconciliationRepository
	transferUC *usecase.TransferUseCase
	refundUC   *usecase.RefundUseCase
	payrollUC  *usecase.PayrollUseCase
	reconUC    *usecase.ReconciliationUseCase
}

func newStack(t *testing.T, db *testutil.TestDB, gw usecase.Gateway) *stack {
	t.Helper()

	loc, err := time.LoadLocation("Africa/Tripoli")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	log := zerolog.Nop()
	pool := db.Pool

	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier(log, nil)
	idGen := postgres.NewULIDGenerator()
	ledgerRepo := postgres.NewLedgerRepository(pool)
	pricingRepo := postgres.NewPricingRepository(pool)
	counterRepo := postgres.NewLimitCounterRepository(pool)
	salaryRepo := postgres.NewSalaryRepository(pool)
	caseRepo := postgres.NewReconciliationRepository(pool)
	refs := correlation.NewGenerator(loc)

	reconUC := usecase.NewReconciliationUseCase(caseRepo, usecase.CaseStores{
		TxManager: txManager,
		Retrier:   retrier,
		Ledger:    ledgerRepo,
		Counters:  counterRepo,
		Salary:    salaryRepo,
	}, idGen, log, nil)
	lookupUC := usecase.NewLookupUseCase(gw, nil, []string{"CORP"}, time.Minute, log)
	pricingUC := usecase.NewPricingUseCase(pricingRepo, ledgerRepo, loc)

	return &stack{
		ledgerRepo: ledgerRepo,
		caseRepo:   caseRepo,
		transferUC: usecase.NewTransferUseCase(
			txManager, retrier, ledgerRepo, counterRepo, pricingUC, lookupUC, gw, refs, idGen, reconUC,
			usecase.TransferConfig{DefaultCurrency: "LYD", CommissionAccount: "0010000000001"},
			log, nil,
		),
		refundUC: usecase.NewRefundUseCase(
			txManager, retrier, ledgerRepo, counterRepo, gw, refs, idGen, reconUC, "LYD", log, nil,
		),
		payrollUC: usecase.NewPayrollUseCase(
			txManager, retrier, salaryRepo, pricingRepo, gw, refs,
			redisRepo.NewPostingLocker(redisClient, nil), reconUC,
			usecase.PayrollConfig{LockTTL: time.Minute},
			log, nil,
		),
		reconUC: reconUC,
	}
}
