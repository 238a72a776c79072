package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/logger"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// CaseStores are the stores a resolution writes its outcome to.
type CaseStores struct {
	TxManager TransactionManager
	Retrier   Retrier
	Ledger    LedgerRepository
	Counters  LimitCounterRepository
	Salary    SalaryRepository
}

// ReconciliationUseCase tracks money movements that need an operator.
type ReconciliationUseCase struct {
	caseRepo ReconciliationRepository
	stores   CaseStores
	settler  *settler
	idGen    IDGenerator
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	caseRepo ReconciliationRepository,
	stores CaseStores,
	idGen IDGenerator,
	log zerolog.Logger,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		caseRepo: caseRepo,
		stores:   stores,
		settler: &settler{
			ledgerRepo:  stores.Ledger,
			counterRepo: stores.Counters,
			retrier:     stores.Retrier,
			logger:      log,
		},
		idGen:   idGen,
		logger:  log,
		metrics: m,
	}
}

// Open records a case. If the case itself cannot be stored the details are logged at
// error level so the movement is still traceable from the logs.
func (uc *ReconciliationUseCase) Open(
	ctx context.Context,
	kind domain.CaseKind,
	reference, resourceID string,
	payload map[string]any,
) *domain.ReconciliationCase {
	c := &domain.ReconciliationCase{
		ID:         uc.idGen.Generate(),
		Kind:       kind,
		Reference:  reference,
		ResourceID: resourceID,
		Payload:    payload,
		Status:     domain.CaseStatusOpen,
		CreatedAt:  time.Now().UTC(),
	}

	log := logger.WithContext(ctx, uc.logger)

	// The caller's context may already be cancelled; the case must still be written.
	if err := uc.caseRepo.Create(context.WithoutCancel(ctx), c); err != nil {
		log.Error().
			Err(err).
			Str("case_kind", string(kind)).
			Str("reference", reference).
			Str("resource_id", resourceID).
			Interface("payload", payload).
			Msg("failed to record reconciliation case")
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationCases.WithLabelValues(string(kind)).Inc()
	}

	log.Warn().
		Str("case_id", c.ID).
		Str("case_kind", string(kind)).
		Str("reference", reference).
		Str("resource_id", resourceID).
		Msg("reconciliation case opened")

	return c
}

// HasOpen reports whether a ledger entry or salary cycle still has an unresolved case.
func (uc *ReconciliationUseCase) HasOpen(ctx context.Context, resourceID string) (bool, error) {
	return uc.caseRepo.HasOpenForResource(ctx, resourceID)
}

// Get returns one case.
func (uc *ReconciliationUseCase) Get(ctx context.Context, id string) (*domain.ReconciliationCase, error) {
	return uc.caseRepo.GetByID(ctx, id)
}

// ListOpen returns unresolved cases, oldest first.
func (uc *ReconciliationUseCase) ListOpen(ctx context.Context, limit, offset int) ([]*domain.ReconciliationCase, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.caseRepo.ListOpen(ctx, limit, offset)
}

// ResolveCaseInput represents input for closing a case.
type ResolveCaseInput struct {
	CaseID     string
	ResolvedBy string
	Note       string
	// Outcome is what the bank shows for the movement.
	Outcome domain.CaseOutcome
	// BankReference confirms a single transfer. Defaults to the one in the case payload.
	BankReference string
	// PaidEntries lists the salary entries the bank paid. Defaults to the lines the
	// gateway reported as paid, when the case has them.
	PaidEntries []string
}

// Resolve applies what the operator found at the bank, then closes the case.
// Applying the outcome again after a partial failure is harmless.
func (uc *ReconciliationUseCase) Resolve(ctx context.Context, input ResolveCaseInput) (*domain.ReconciliationCase, error) {
	operator := strings.TrimSpace(input.ResolvedBy)
	if operator == "" {
		return nil, domain.ErrMissingOperator
	}

	outcome, err := domain.ParseCaseOutcome(string(input.Outcome))
	if err != nil {
		return nil, err
	}

	c, err := uc.caseRepo.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseStatusResolved {
		return nil, domain.ErrCaseAlreadyResolved
	}

	if c.ConcernsSalaryCycle() {
		err = uc.applyToCycle(ctx, c, outcome, input.PaidEntries, operator)
	} else {
		err = uc.applyToEntry(ctx, c, outcome, input.BankReference, operator)
	}
	if err != nil {
		return nil, err
	}

	note := string(outcome)
	if n := strings.TrimSpace(input.Note); n != "" {
		note += ": " + n
	}

	if err := c.Resolve(operator, note, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uc.caseRepo.Resolve(ctx, c); err != nil {
		return nil, err
	}

	log := logger.WithContext(ctx, uc.logger)
	log.Info().
		Str("case_id", c.ID).
		Str("case_kind", string(c.Kind)).
		Str("outcome", string(outcome)).
		Str("resolved_by", c.ResolvedBy).
		Msg("reconciliation case resolved")

	return c, nil
}

// applyToEntry settles the Pending ledger entry behind a case.
func (uc *ReconciliationUseCase) applyToEntry(
	ctx context.Context,
	c *domain.ReconciliationCase,
	outcome domain.CaseOutcome,
	bankRef, operator string,
) error {
	entry, err := uc.stores.Ledger.GetByID(ctx, c.ResourceID)
	if err != nil {
		return err
	}

	want := domain.TransferStatusCompleted
	if outcome == domain.CaseOutcomeFailed {
		want = domain.TransferStatusFailed
	}
	if entry.Status.IsFinal() {
		if entry.Status == want {
			return nil
		}
		return fmt.Errorf("%w: entry %s is %s", domain.ErrInvalidTransition, entry.ID, entry.Status)
	}

	ctx = context.WithoutCancel(ctx)
	now := time.Now().UTC()

	if outcome == domain.CaseOutcomeCompleted {
		bankRef = strings.TrimSpace(bankRef)
		if bankRef == "" {
			bankRef, _ = c.Payload[domain.PayloadBankReference].(string)
		}
		if bankRef == "" {
			return domain.ErrMissingBankRef
		}
		if err := entry.Complete(bankRef, now); err != nil {
			return err
		}
		return uc.stores.Retrier.Retry(ctx, func() error {
			return uc.stores.Ledger.MarkCompleted(ctx, entry.ID, entry.BankReference, now)
		})
	}

	reservations, err := reservationsFromPayload(c.Payload[domain.PayloadReservations])
	if err != nil {
		return err
	}
	if err := entry.Fail("resolved as failed by "+operator, now); err != nil {
		return err
	}
	if err := uc.stores.Retrier.Retry(ctx, func() error {
		return uc.stores.Ledger.MarkFailed(ctx, entry.ID, entry.FailureReason, now)
	}); err != nil {
		return err
	}
	uc.settler.release(ctx, entry.Reference, reservations)
	return nil
}

// applyToCycle records the lines the bank paid. A failed batch changes nothing;
// the cycle can be posted again once the case is closed.
func (uc *ReconciliationUseCase) applyToCycle(
	ctx context.Context,
	c *domain.ReconciliationCase,
	outcome domain.CaseOutcome,
	paid []string,
	operator string,
) error {
	if outcome == domain.CaseOutcomeFailed {
		return nil
	}

	if len(paid) == 0 {
		paid = c.PayloadStrings(domain.PayloadSucceeded)
	}
	if len(paid) == 0 {
		return domain.ErrMissingPaidEntries
	}

	cycle, err := uc.stores.Salary.GetCycleWithEntries(ctx, c.ResourceID)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(cycle.Entries))
	for _, e := range cycle.Entries {
		known[e.ID] = true
	}
	for _, id := range paid {
		if !known[id] {
			return fmt.Errorf("%w: %s in cycle %s", domain.ErrEntryNotFound, id, cycle.ID)
		}
	}

	changed := cycle.ApplyPosting(c.Reference, paid, operator, time.Now().UTC())
	if len(changed) == 0 {
		return nil
	}
	return persistPosting(ctx, uc.stores.TxManager, uc.stores.Retrier, uc.stores.Salary, cycle, changed)
}
