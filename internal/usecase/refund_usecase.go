package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/logger"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// RefundUseCase compensates completed debits.
type RefundUseCase struct {
	txManager  TransactionManager
	ledgerRepo LedgerRepository
	gateway    Gateway
	refs       ReferenceGenerator
	idGen      IDGenerator
	settler    *settler
	currency   string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewRefundUseCase creates a new RefundUseCase.
func NewRefundUseCase(
	txManager TransactionManager,
	retrier Retrier,
	ledgerRepo LedgerRepository,
	counterRepo LimitCounterRepository,
	gateway Gateway,
	refs ReferenceGenerator,
	idGen IDGenerator,
	cases CaseRecorder,
	defaultCurrency string,
	log zerolog.Logger,
	m *metrics.Metrics,
) *RefundUseCase {
	if defaultCurrency == "" {
		defaultCurrency = DefaultLocalCurrency
	}
	return &RefundUseCase{
		txManager:  txManager,
		ledgerRepo: ledgerRepo,
		gateway:    gateway,
		refs:       refs,
		idGen:      idGen,
		settler: &settler{
			ledgerRepo:  ledgerRepo,
			counterRepo: counterRepo,
			retrier:     retrier,
			cases:       cases,
			logger:      log,
		},
		currency: defaultCurrency,
		logger:   log,
		metrics:  m,
	}
}

// RefundInput describes the debit being compensated. Source and destination are
// those of the original debit; the refund moves money the other way.
type RefundInput struct {
	OriginalReference  string
	Currency           string
	SourceAccount      string
	DestinationAccount string
	Amount             decimal.Decimal
	Note               string
	UserID             string
}

// RefundEntryInput refunds a stored ledger entry.
type RefundEntryInput struct {
	EntryID string
	Note    string
	UserID  string
}

// RefundByOriginalReference reverses the debit identified by its correlation reference.
func (uc *RefundUseCase) RefundByOriginalReference(ctx context.Context, input RefundInput) (*TransferResult, error) {
	start := time.Now()
	result, outcome, err := uc.refund(ctx, input, nil)
	uc.observe(start, outcome, result)
	return result, err
}

// RefundLedgerEntry loads a completed debit and reverses it.
func (uc *RefundUseCase) RefundLedgerEntry(ctx context.Context, input RefundEntryInput) (*TransferResult, error) {
	start := time.Now()

	original, err := uc.ledgerRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}
	if err := original.CanRefund(); err != nil {
		return nil, err
	}

	result, outcome, err := uc.refund(ctx, RefundInput{
		OriginalReference:  original.Reference,
		Currency:           original.Currency,
		SourceAccount:      original.SourceAccount,
		DestinationAccount: original.DestinationAccount,
		Amount:             original.Amount,
		Note:               input.Note,
		UserID:             input.UserID,
	}, original)
	uc.observe(start, outcome, result)
	return result, err
}

func (uc *RefundUseCase) refund(
	ctx context.Context,
	input RefundInput,
	original *domain.TransferLedgerEntry,
) (*TransferResult, string, error) {
	// 1. Validate
	input.OriginalReference = strings.TrimSpace(input.OriginalReference)
	if input.OriginalReference == "" {
		return nil, "invalid", domain.ErrMissingReference
	}
	input.Currency = domain.NormalizeCurrency(input.Currency, uc.currency)
	input.SourceAccount = strings.TrimSpace(input.SourceAccount)
	input.DestinationAccount = strings.TrimSpace(input.DestinationAccount)
	if err := validateMovement(input.SourceAccount, input.DestinationAccount, input.Amount, input.Currency); err != nil {
		return nil, "invalid", err
	}

	if err := ctx.Err(); err != nil {
		return nil, "cancelled", err
	}

	// 2. One refund per original reference
	if _, err := uc.ledgerRepo.FindActiveRefund(ctx, input.OriginalReference); err == nil {
		return nil, "rejected", fmt.Errorf("%w: %s", domain.ErrAlreadyRefunded, input.OriginalReference)
	} else if !errors.Is(err, domain.ErrLedgerEntryNotFound) {
		return nil, "error", err
	}

	if original == nil {
		stored, err := uc.ledgerRepo.GetByReference(ctx, input.OriginalReference)
		switch {
		case err == nil:
			if err := stored.CanRefund(); err != nil {
				return nil, "rejected", err
			}
			original = stored
		case errors.Is(err, domain.ErrLedgerEntryNotFound):
			// debits made before the ledger existed are refunded on the caller's word
		default:
			return nil, "error", err
		}
	}

	// 3. Pending refund row
	entry := &domain.TransferLedgerEntry{
		ID:                 uc.idGen.Generate(),
		UserID:             input.UserID,
		SourceAccount:      input.DestinationAccount,
		DestinationAccount: input.SourceAccount,
		Amount:             input.Amount,
		Currency:           input.Currency,
		Kind:               domain.TransferKindRefund,
		Status:             domain.TransferStatusPending,
		Description:        strings.TrimSpace(input.Note),
		Reference:          uc.refs.New(),
		OriginalReference:  input.OriginalReference,
		RequestedAt:        time.Now().UTC(),
	}
	if original != nil {
		entry.CompanyID = original.CompanyID
		entry.CategoryID = original.CategoryID
		entry.ServicePackageID = original.ServicePackageID
		entry.Mode = original.Mode
		entry.ExchangeRate = original.ExchangeRate
	}

	if err := uc.settler.open(ctx, uc.txManager, entry, nil); err != nil {
		if errors.Is(err, domain.ErrAlreadyRefunded) {
			return nil, "rejected", err
		}
		return nil, "error", fmt.Errorf("record pending refund: %w", err)
	}

	// 4. Gateway
	if err := ctx.Err(); err != nil {
		uc.settler.fail(ctx, entry, err, nil)
		return nil, "cancelled", err
	}

	narrative := input.Note
	if narrative == "" {
		narrative = "Refund " + input.OriginalReference
	}

	ack, callErr := uc.gateway.ReverseTransfer(ctx, domain.ReversalOrder{
		Reference:          entry.Reference,
		OriginalReference:  entry.OriginalReference,
		Currency:           entry.Currency,
		SourceAccount:      entry.SourceAccount,
		DestinationAccount: entry.DestinationAccount,
		Amount:             entry.Amount,
		Narrative:          narrative,
	})

	outcome, err := uc.settler.settle(ctx, entry, ack, callErr, nil)
	if err != nil {
		return nil, outcome, err
	}

	log := logger.WithContext(ctx, uc.logger)
	log.Info().
		Str("entry_id", entry.ID).
		Str("reference", entry.Reference).
		Str("original_reference", entry.OriginalReference).
		Str("bank_reference", entry.BankReference).
		Str("amount", entry.Amount.String()).
		Msg("refund completed")

	return &TransferResult{Entry: entry, BankReference: entry.BankReference}, outcome, nil
}

func (uc *RefundUseCase) observe(start time.Time, outcome string, result *TransferResult) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.Transfers.WithLabelValues(string(domain.TransferKindRefund), outcome).Inc()
	uc.metrics.TransferDuration.WithLabelValues(string(domain.TransferKindRefund)).Observe(time.Since(start).Seconds())
	if result != nil {
		uc.metrics.TransferAmount.Observe(result.Entry.Amount.InexactFloat64())
	}
}
