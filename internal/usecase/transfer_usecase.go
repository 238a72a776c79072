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

// TransferConfig holds service-wide transfer defaults.
type TransferConfig struct {
	DefaultCurrency   string
	CommissionAccount string // used when the pricing rule names none
}

// TransferUseCase debits company accounts for services through the gateway.
type TransferUseCase struct {
	txManager  TransactionManager
	pricing    *PricingUseCase
	classifier ModeClassifier
	gateway    Gateway
	refs       ReferenceGenerator
	idGen      IDGenerator
	settler    *settler
	cfg        TransferConfig
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	retrier Retrier,
	ledgerRepo LedgerRepository,
	counterRepo LimitCounterRepository,
	pricing *PricingUseCase,
	classifier ModeClassifier,
	gateway Gateway,
	refs ReferenceGenerator,
	idGen IDGenerator,
	cases CaseRecorder,
	cfg TransferConfig,
	log zerolog.Logger,
	m *metrics.Metrics,
) *TransferUseCase {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DefaultLocalCurrency
	}
	return &TransferUseCase{
		txManager:  txManager,
		pricing:    pricing,
		classifier: classifier,
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
		cfg:     cfg,
		logger:  log,
		metrics: m,
	}
}

// DebitInput represents input for debiting a company for a service.
type DebitInput struct {
	UserID             string
	CompanyID          string
	PackageID          string
	CategoryID         string
	SourceAccount      string
	DestinationAccount string
	Amount             decimal.Decimal
	Currency           string

	// Optional overrides
	Pricing               *domain.PricingRule
	ApplySecondLeg        *bool
	CommissionOnRecipient bool
	ExchangeRate          decimal.Decimal
	Mode                  domain.TransferMode
	Narrative             string
	Description           string
}

// TransferResult is the outcome of a completed debit or refund.
type TransferResult struct {
	Entry         *domain.TransferLedgerEntry
	BankReference string
	Quote         *domain.Quote
}

// DebitForService prices, reserves and posts a single debit.
func (uc *TransferUseCase) DebitForService(ctx context.Context, input DebitInput) (*TransferResult, error) {
	start := time.Now()
	result, outcome, err := uc.debit(ctx, input)

	if uc.metrics != nil {
		uc.metrics.Transfers.WithLabelValues(string(domain.TransferKindTransfer), outcome).Inc()
		uc.metrics.TransferDuration.WithLabelValues(string(domain.TransferKindTransfer)).Observe(time.Since(start).Seconds())
		if outcome == "rejected" {
			uc.metrics.LimitRejections.WithLabelValues(rejectionReason(err)).Inc()
		}
		if result != nil {
			uc.metrics.TransferAmount.Observe(result.Entry.Amount.InexactFloat64())
		}
	}

	return result, err
}

func (uc *TransferUseCase) debit(ctx context.Context, input DebitInput) (*TransferResult, string, error) {
	log := logger.WithContext(ctx, uc.logger)

	// 1. Validate before any side effect
	input.Currency = domain.NormalizeCurrency(input.Currency, uc.cfg.DefaultCurrency)
	input.SourceAccount = strings.TrimSpace(input.SourceAccount)
	input.DestinationAccount = strings.TrimSpace(input.DestinationAccount)
	if err := validateMovement(input.SourceAccount, input.DestinationAccount, input.Amount, input.Currency); err != nil {
		return nil, "invalid", err
	}

	// 2. Price and check limits against the ledger
	now := time.Now()
	quote, err := uc.pricing.Quote(ctx, QuoteInput{
		CompanyID:  input.CompanyID,
		PackageID:  input.PackageID,
		CategoryID: input.CategoryID,
		Currency:   input.Currency,
		Amount:     input.Amount,
		Rule:       input.Pricing,
		At:         now,
	})
	if err != nil {
		if domain.IsRejection(err) || domain.IsValidationError(err) {
			return nil, "rejected", err
		}
		return nil, "error", err
	}
	if input.ApplySecondLeg != nil {
		quote.Rule.ApplySecondLeg = *input.ApplySecondLeg
	}

	// 3. Transfer mode
	mode := input.Mode
	if mode == "" {
		mode = uc.classify(ctx, input.DestinationAccount)
	}

	// 4. Pending row and limit reservations, atomically
	entry := &domain.TransferLedgerEntry{
		ID:                    uc.idGen.Generate(),
		UserID:                input.UserID,
		CompanyID:             input.CompanyID,
		CategoryID:            input.CategoryID,
		ServicePackageID:      input.PackageID,
		SourceAccount:         input.SourceAccount,
		DestinationAccount:    input.DestinationAccount,
		Amount:                input.Amount,
		Commission:            quote.Commission,
		CommissionOnRecipient: input.CommissionOnRecipient,
		ExchangeRate:          input.ExchangeRate,
		Currency:              input.Currency,
		Mode:                  mode,
		Kind:                  domain.TransferKindTransfer,
		Status:                domain.TransferStatusPending,
		Description:           strings.TrimSpace(input.Description),
		Reference:             uc.refs.New(),
		RequestedAt:           now.UTC(),
	}

	reservations := make([]reservation, 0, len(quote.Limits))
	for _, l := range quote.Limits {
		if !l.MaxAmount.IsPositive() {
			continue
		}
		reservations = append(reservations, reservation{
			key:    l.CounterKey(input.CompanyID, now.In(uc.pricing.loc)),
			amount: input.Amount,
			max:    l.MaxAmount,
		})
	}

	if err := uc.settler.open(ctx, uc.txManager, entry, reservations); err != nil {
		if errors.Is(err, domain.ErrLimitExceeded) {
			return nil, "rejected", err
		}
		return nil, "error", fmt.Errorf("record pending transfer: %w", err)
	}

	// 5. Gateway
	if err := ctx.Err(); err != nil {
		uc.settler.fail(ctx, entry, err, reservations)
		return nil, "cancelled", err
	}

	order := uc.buildOrder(ctx, entry, quote, input.Narrative)
	ack, callErr := uc.gateway.PostTransfer(ctx, order)

	// 6. Record the outcome
	outcome, err := uc.settler.settle(ctx, entry, ack, callErr, reservations)
	if err != nil {
		return nil, outcome, err
	}

	log.Info().
		Str("entry_id", entry.ID).
		Str("reference", entry.Reference).
		Str("bank_reference", entry.BankReference).
		Str("amount", entry.Amount.String()).
		Str("commission", entry.Commission.String()).
		Str("mode", string(entry.Mode)).
		Msg("debit completed")

	return &TransferResult{
		Entry:         entry,
		BankReference: entry.BankReference,
		Quote:         quote,
	}, outcome, nil
}

// buildOrder turns a priced entry into the gateway request.
func (uc *TransferUseCase) buildOrder(
	ctx context.Context,
	entry *domain.TransferLedgerEntry,
	quote *domain.Quote,
	narrative string,
) domain.TransferOrder {
	if narrative == "" {
		narrative = quote.Rule.Narrative
	}

	order := domain.TransferOrder{
		Reference:          entry.Reference,
		Currency:           entry.Currency,
		SourceAccount:      entry.SourceAccount,
		DestinationAccount: entry.DestinationAccount,
		Amount:             entry.Amount,
		DebitCode:          quote.Rule.DebitCode,
		CreditCode:         quote.Rule.CreditCode,
		Narrative:          domain.TrimNarrative(narrative),
	}

	if !quote.SecondLegEnabled() {
		return order
	}

	commissionAccount := quote.Rule.CommissionAccount
	if commissionAccount == "" {
		commissionAccount = uc.cfg.CommissionAccount
	}
	if commissionAccount == "" {
		log := logger.WithContext(ctx, uc.logger)
		log.Warn().
			Str("reference", entry.Reference).
			Str("category_id", entry.CategoryID).
			Msg("no commission account configured, sending without commission leg")
		return order
	}

	payer := entry.SourceAccount
	if entry.CommissionOnRecipient {
		payer = entry.DestinationAccount
	}

	order.SecondLeg = &domain.SecondLeg{
		SourceAccount:      payer,
		DestinationAccount: commissionAccount,
		Amount:             quote.Commission,
		DebitCode:          quote.Rule.DebitCode2,
		CreditCode:         quote.Rule.CreditCode2,
	}
	return order
}

// classify falls back to B2C when the lookup fails; the mode only labels the entry.
func (uc *TransferUseCase) classify(ctx context.Context, account string) domain.TransferMode {
	if uc.classifier == nil {
		return domain.TransferModeB2C
	}
	mode, err := uc.classifier.ClassifyTransferMode(ctx, account)
	if err != nil {
		log := logger.WithContext(ctx, uc.logger)
		log.Warn().
			Err(err).
			Str("account", account).
			Msg("customer status lookup failed, assuming B2C")
		return domain.TransferModeB2C
	}
	return mode
}

func validateMovement(source, destination string, amount decimal.Decimal, currency string) error {
	if err := domain.ValidateAccount(source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := domain.ValidateAccount(destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	return domain.ValidateCurrency(currency)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCategoryDisabled):
		return "category_disabled"
	case errors.Is(err, domain.ErrPricingNotFound):
		return "pricing_not_found"
	case errors.Is(err, domain.ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, domain.ErrLimitExceeded):
		return "limit_exceeded"
	default:
		return "validation"
	}
}
