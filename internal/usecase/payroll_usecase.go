package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/logger"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// PayrollConfig controls batch posting.
type PayrollConfig struct {
	LockTTL           time.Duration
	CommissionAccount string // used when the salary pricing rule names none
	// TrustHeaderOnUnparsed treats every line as paid when the header reads success
	// but the per-line results cannot be read.
	TrustHeaderOnUnparsed bool
}

// PayrollUseCase posts salary cycles as one group transfer.
type PayrollUseCase struct {
	txManager   TransactionManager
	retrier     Retrier
	salaryRepo  SalaryRepository
	pricingRepo PricingRepository
	gateway     Gateway
	refs        ReferenceGenerator
	locker      PostingLocker
	cases       CaseTracker
	cfg         PayrollConfig
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewPayrollUseCase creates a new PayrollUseCase.
func NewPayrollUseCase(
	txManager TransactionManager,
	retrier Retrier,
	salaryRepo SalaryRepository,
	pricingRepo PricingRepository,
	gateway Gateway,
	refs ReferenceGenerator,
	locker PostingLocker,
	cases CaseTracker,
	cfg PayrollConfig,
	log zerolog.Logger,
	m *metrics.Metrics,
) *PayrollUseCase {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultPostingLockTTL
	}
	return &PayrollUseCase{
		txManager:   txManager,
		retrier:     retrier,
		salaryRepo:  salaryRepo,
		pricingRepo: pricingRepo,
		gateway:     gateway,
		refs:        refs,
		locker:      locker,
		cases:       cases,
		cfg:         cfg,
		logger:      log,
		metrics:     m,
	}
}

// PostCycleInput represents input for posting a salary cycle.
type PostCycleInput struct {
	CycleID string
	UserID  string
}

// PostingResult summarizes a group transfer. A batch where some lines failed is
// still a result, not an error.
type PostingResult struct {
	CycleID        string
	BatchReference string
	Submitted      int
	Succeeded      []string
	Failed         []string
	Posted         bool
}

// PostCycle pays every eligible entry of a cycle in one gateway call.
func (uc *PayrollUseCase) PostCycle(ctx context.Context, input PostCycleInput) (*PostingResult, error) {
	result, err := uc.postCycle(ctx, input)

	if uc.metrics != nil {
		uc.metrics.PayrollPostings.WithLabelValues(postingOutcome(result, err)).Inc()
		if result != nil {
			uc.metrics.PayrollLines.WithLabelValues("succeeded").Add(float64(len(result.Succeeded)))
			uc.metrics.PayrollLines.WithLabelValues("failed").Add(float64(len(result.Failed)))
		}
	}

	return result, err
}

func (uc *PayrollUseCase) postCycle(ctx context.Context, input PostCycleInput) (*PostingResult, error) {
	log := logger.WithContext(ctx, uc.logger).With().Str("cycle_id", input.CycleID).Logger()

	// 1. Serialize postings of the same cycle
	lockKey := postingLockPrefix + input.CycleID
	token, err := uc.locker.Acquire(ctx, lockKey, uc.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := uc.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			log.Warn().Err(err).Msg("failed to release posting lock")
		}
	}()

	// 2. Load the cycle
	cycle, err := uc.salaryRepo.GetCycleWithEntries(ctx, input.CycleID)
	if err != nil {
		return nil, err
	}
	if cycle.IsPosted() {
		return nil, domain.ErrCycleAlreadyPosted
	}

	// An earlier attempt may have paid lines nobody recorded. Sending the batch
	// again could pay them twice, so the cycle waits for an operator.
	pending, err := uc.cases.HasOpen(ctx, cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("check open cases: %w", err)
	}
	if pending {
		return nil, domain.ErrCycleAwaitingReview
	}

	// 3. Salary payments must be enabled for the company's package
	rule, err := uc.salaryPricing(ctx, cycle.CompanyID)
	if err != nil {
		return nil, err
	}

	// 4. Eligible entries
	eligible := cycle.EligibleEntries()
	if len(eligible) == 0 {
		return nil, domain.ErrNoEligibleEntries
	}

	// 5. Build the batch
	order := uc.buildOrder(cycle, eligible, rule)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 6. One gateway call
	gw, err := uc.gateway.PostGroupTransfer(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrOutcomeUnknown) {
			uc.openBatchCase(ctx, cycle, order, eligible, err)
		}
		return nil, err
	}

	// 7. Work out which lines were paid
	succeeded, failed, err := uc.matchLines(ctx, cycle, order, eligible, gw)
	if err != nil {
		return nil, err
	}

	result := &PostingResult{
		CycleID:        cycle.ID,
		BatchReference: order.BatchID,
		Submitted:      len(eligible),
		Succeeded:      succeeded,
		Failed:         failed,
	}

	// 8. Persist
	changed := cycle.ApplyPosting(order.BatchID, succeeded, input.UserID, time.Now().UTC())
	result.Posted = cycle.IsPosted()

	if err := persistPosting(ctx, uc.txManager, uc.retrier, uc.salaryRepo, cycle, changed); err != nil {
		log.Error().
			Err(err).
			Str("batch_reference", order.BatchID).
			Strs("succeeded", succeeded).
			Msg("gateway paid salary lines but the cycle could not be updated")

		uc.cases.Open(ctx, domain.CaseLedgerWriteFailed, order.BatchID, cycle.ID, map[string]any{
			domain.PayloadSubject:   domain.SubjectSalaryCycle,
			"company_id":            cycle.CompanyID,
			domain.PayloadSucceeded: succeeded,
			"failed":                failed,
			"user_id":               input.UserID,
			"error":                 err.Error(),
		})
		return result, fmt.Errorf("%w: %w", domain.ErrPostingUnrecorded, err)
	}

	log.Info().
		Str("batch_reference", order.BatchID).
		Int("submitted", result.Submitted).
		Int("succeeded", len(succeeded)).
		Int("failed", len(failed)).
		Msg("salary cycle posted")

	return result, nil
}

// salaryPricing checks the category and loads its rule. A missing rule means no commission.
func (uc *PayrollUseCase) salaryPricing(ctx context.Context, companyID string) (domain.PricingRule, error) {
	rule := domain.PricingRule{CategoryID: domain.CategorySalaryPayment}

	packageID, err := uc.pricingRepo.CompanyPackageID(ctx, companyID)
	if err != nil {
		return rule, fmt.Errorf("resolve service package: %w", err)
	}

	pc, err := uc.pricingRepo.GetPackageCategory(ctx, packageID, domain.CategorySalaryPayment)
	if err != nil {
		return rule, err
	}
	if !pc.Enabled {
		return rule, fmt.Errorf("%w: %s", domain.ErrCategoryDisabled, domain.CategorySalaryPayment)
	}

	stored, err := uc.pricingRepo.GetRule(ctx, domain.CategorySalaryPayment)
	switch {
	case err == nil:
		return *stored, nil
	case errors.Is(err, domain.ErrPricingNotFound):
		return rule, nil
	default:
		return rule, err
	}
}

func (uc *PayrollUseCase) buildOrder(
	cycle *domain.SalaryCycle,
	eligible []*domain.SalaryEntry,
	rule domain.PricingRule,
) domain.GroupTransferOrder {
	batchID, lineIDs := uc.refs.NewBatch(len(eligible))

	commissionAccount := rule.CommissionAccount
	if commissionAccount == "" {
		commissionAccount = uc.cfg.CommissionAccount
	}

	narrative := rule.Narrative
	if narrative == "" {
		narrative = "Salary " + cycle.SalaryMonth
	}

	order := domain.GroupTransferOrder{
		BatchID:      batchID,
		Currency:     domain.NormalizeCurrency(cycle.Currency, DefaultLocalCurrency),
		DebitAccount: cycle.DebitAccount,
		Lines:        make([]domain.GroupLine, len(eligible)),
	}

	for i, e := range eligible {
		commission := rule.Commission(e.Amount)
		if commissionAccount == "" {
			commission = decimal.Zero
		}
		e.Commission = commission

		order.Lines[i] = domain.GroupLine{
			LineID:            lineIDs[i],
			DebitAccount:      cycle.DebitAccount,
			CreditAccount:     e.AccountNumber,
			Amount:            e.Amount,
			Commission:        commission,
			CommissionAccount: commissionAccount,
			Narrative:         narrative,
		}
	}

	return order
}

// matchLines returns the ids of paid and unpaid entries. Line codes override the header.
func (uc *PayrollUseCase) matchLines(
	ctx context.Context,
	cycle *domain.SalaryCycle,
	order domain.GroupTransferOrder,
	eligible []*domain.SalaryEntry,
	gw *domain.GroupTransferResult,
) ([]string, []string, error) {
	if !gw.LinesParsed || len(gw.Lines) == 0 {
		if !gw.HeaderSuccess {
			return nil, nil, &domain.GatewayRejectedError{Message: gw.ReturnMessage}
		}
		if !uc.cfg.TrustHeaderOnUnparsed {
			err := fmt.Errorf("%w: batch %s", domain.ErrBatchOutcomeUnknown, order.BatchID)
			uc.openBatchCase(ctx, cycle, order, eligible, err)
			return nil, nil, err
		}

		log := logger.WithContext(ctx, uc.logger)
		log.Warn().
			Str("cycle_id", cycle.ID).
			Str("batch_reference", order.BatchID).
			Msg("line results unreadable, trusting header success for every line")

		ids := make([]string, len(eligible))
		for i, e := range eligible {
			ids[i] = e.ID
		}
		return ids, nil, nil
	}

	byLine := make(map[string]*domain.SalaryEntry, len(eligible))
	byAccount := make(map[string][]*domain.SalaryEntry, len(eligible))
	for i, e := range eligible {
		byLine[order.Lines[i].LineID] = e
		byAccount[e.AccountNumber] = append(byAccount[e.AccountNumber], e)
	}

	paid := make(map[string]bool, len(eligible))
	seen := make(map[string]bool, len(eligible))

	for _, line := range gw.Lines {
		e, ok := byLine[line.LineID]
		if !ok || seen[e.ID] {
			e = nil
			for _, candidate := range byAccount[line.CreditAccount] {
				if !seen[candidate.ID] {
					e = candidate
					break
				}
			}
		}
		if e == nil {
			continue
		}
		seen[e.ID] = true
		paid[e.ID] = line.Succeeded()
	}

	var succeeded, failed []string
	for _, e := range eligible {
		if paid[e.ID] {
			succeeded = append(succeeded, e.ID)
		} else {
			failed = append(failed, e.ID)
		}
	}
	return succeeded, failed, nil
}

// persistPosting stores the outcome of a batch. It runs detached from the caller
// because the money has already moved.
func persistPosting(
	ctx context.Context,
	txManager TransactionManager,
	retrier Retrier,
	repo SalaryRepository,
	cycle *domain.SalaryCycle,
	changed []*domain.SalaryEntry,
) error {
	ctx = context.WithoutCancel(ctx)

	return retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		if err := repo.SavePosting(txCtx, tx, cycle, changed); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
}

func (uc *PayrollUseCase) openBatchCase(
	ctx context.Context,
	cycle *domain.SalaryCycle,
	order domain.GroupTransferOrder,
	eligible []*domain.SalaryEntry,
	cause error,
) {
	lines := make([]string, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = l.LineID
	}
	entries := make([]string, len(eligible))
	for i, e := range eligible {
		entries[i] = e.ID
	}

	uc.cases.Open(ctx, domain.CaseBatchOutcomeUnknown, order.BatchID, cycle.ID, map[string]any{
		domain.PayloadSubject: domain.SubjectSalaryCycle,
		"company_id":          cycle.CompanyID,
		"lines":               lines,
		domain.PayloadEntries: entries,
		"error":               cause.Error(),
	})
}

func postingOutcome(result *PostingResult, err error) string {
	switch {
	case errors.Is(err, domain.ErrPostingUnrecorded):
		return "unrecorded"
	case errors.Is(err, domain.ErrOutcomeUnknown), errors.Is(err, domain.ErrBatchOutcomeUnknown):
		return "unknown"
	case errors.Is(err, domain.ErrPostingInProgress), errors.Is(err, domain.ErrCycleAlreadyPosted),
		errors.Is(err, domain.ErrCycleAwaitingReview):
		return "conflict"
	case err != nil:
		return "failed"
	case len(result.Failed) > 0:
		return "partial"
	default:
		return "posted"
	}
}
