package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/logger"
)

// reservation is an amount held against one limit counter.
type reservation struct {
	key    domain.LimitCounterKey
	amount decimal.Decimal
	max    decimal.Decimal
}

// heldAmount is a reservation as stored in a case payload, so that resolving the
// case as failed can give it back.
type heldAmount struct {
	CompanyID  string          `json:"company_id"`
	CategoryID string          `json:"category_id"`
	Currency   string          `json:"currency"`
	Period     domain.Period   `json:"period"`
	PeriodKey  string          `json:"period_key"`
	Amount     decimal.Decimal `json:"amount"`
}

func heldAmounts(reservations []reservation) []heldAmount {
	out := make([]heldAmount, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, heldAmount{
			CompanyID:  r.key.CompanyID,
			CategoryID: r.key.CategoryID,
			Currency:   r.key.Currency,
			Period:     r.key.Period,
			PeriodKey:  r.key.PeriodKey,
			Amount:     r.amount,
		})
	}
	return out
}

// reservationsFromPayload reads back what heldAmounts stored. The value is either the
// original slice or its JSON decoding, so it goes through JSON in both cases.
func reservationsFromPayload(v any) ([]reservation, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var held []heldAmount
	if err := json.Unmarshal(raw, &held); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}
	out := make([]reservation, 0, len(held))
	for _, h := range held {
		out = append(out, reservation{
			key: domain.LimitCounterKey{
				CompanyID:  h.CompanyID,
				CategoryID: h.CategoryID,
				Currency:   h.Currency,
				Period:     h.Period,
				PeriodKey:  h.PeriodKey,
			},
			amount: h.Amount,
		})
	}
	return out, nil
}

// settler moves a Pending ledger entry to its final state once the gateway has answered.
// All of its writes run detached from the caller's cancellation.
type settler struct {
	ledgerRepo  LedgerRepository
	counterRepo LimitCounterRepository
	retrier     Retrier
	cases       CaseRecorder
	logger      zerolog.Logger
}

// open inserts the Pending entry and reserves the counters in one transaction.
func (s *settler) open(
	ctx context.Context,
	txManager TransactionManager,
	entry *domain.TransferLedgerEntry,
	reservations []reservation,
) error {
	return s.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		for _, r := range reservations {
			ok, err := s.counterRepo.Reserve(txCtx, tx, r.key, r.amount, r.max)
			if err != nil {
				return fmt.Errorf("reserve %s limit: %w", r.key.Period, err)
			}
			if !ok {
				return fmt.Errorf("%w: %s cap %s reached for %s",
					domain.ErrLimitExceeded, r.key.Period, r.max.String(), r.key.PeriodKey)
			}
		}

		if err := s.ledgerRepo.Create(txCtx, tx, entry); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
}

// complete records the gateway ack. A failure here is escalated, never dropped.
func (s *settler) complete(
	ctx context.Context,
	entry *domain.TransferLedgerEntry,
	ack *domain.GatewayAck,
	reservations []reservation,
) error {
	ctx = context.WithoutCancel(ctx)

	bankRef := ""
	if ack != nil {
		bankRef = ack.BankReference
	}

	now := time.Now().UTC()
	if err := entry.Complete(bankRef, now); err != nil {
		return err
	}

	err := s.retrier.Retry(ctx, func() error {
		return s.ledgerRepo.MarkCompleted(ctx, entry.ID, entry.BankReference, now)
	})
	if err == nil {
		return nil
	}

	log := logger.WithContext(ctx, s.logger)
	log.Error().
		Err(err).
		Str("entry_id", entry.ID).
		Str("reference", entry.Reference).
		Str("bank_reference", entry.BankReference).
		Msg("gateway accepted the transfer but the ledger could not be updated")

	s.cases.Open(ctx, domain.CaseLedgerWriteFailed, entry.Reference, entry.ID, map[string]any{
		"kind":                      string(entry.Kind),
		domain.PayloadBankReference: entry.BankReference,
		"amount":                    entry.Amount.String(),
		"currency":                  entry.Currency,
		"source":                    entry.SourceAccount,
		"destination":               entry.DestinationAccount,
		domain.PayloadReservations:  heldAmounts(reservations),
		"error":                     err.Error(),
	})

	return fmt.Errorf("%w: %w", domain.ErrPostingUnrecorded, err)
}

// fail records a definitive failure and gives the reserved amounts back.
func (s *settler) fail(ctx context.Context, entry *domain.TransferLedgerEntry, cause error, reservations []reservation) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithContext(ctx, s.logger)

	now := time.Now().UTC()
	if err := entry.Fail(cause.Error(), now); err != nil {
		return
	}

	err := s.retrier.Retry(ctx, func() error {
		return s.ledgerRepo.MarkFailed(ctx, entry.ID, entry.FailureReason, now)
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("entry_id", entry.ID).
			Str("reference", entry.Reference).
			Msg("failed to mark ledger entry failed")
		return
	}

	s.release(ctx, entry.Reference, reservations)
}

// release gives reserved amounts back, logging any counter it could not update.
func (s *settler) release(ctx context.Context, reference string, reservations []reservation) {
	log := logger.WithContext(ctx, s.logger)
	for _, r := range reservations {
		if err := s.counterRepo.Release(ctx, r.key, r.amount); err != nil {
			log.Error().
				Err(err).
				Str("reference", reference).
				Str("period", string(r.key.Period)).
				Str("period_key", r.key.PeriodKey).
				Msg("failed to release limit reservation")
		}
	}
}

// unknown leaves the entry Pending with its reservations and opens a case.
func (s *settler) unknown(
	ctx context.Context,
	entry *domain.TransferLedgerEntry,
	cause error,
	reservations []reservation,
) {
	ctx = context.WithoutCancel(ctx)

	log := logger.WithContext(ctx, s.logger)
	log.Warn().
		Err(cause).
		Str("entry_id", entry.ID).
		Str("reference", entry.Reference).
		Msg("gateway outcome unknown, leaving ledger entry pending")

	s.cases.Open(ctx, domain.CaseOutcomeUnknown, entry.Reference, entry.ID, map[string]any{
		"kind":                     string(entry.Kind),
		"amount":                   entry.Amount.String(),
		"currency":                 entry.Currency,
		"source":                   entry.SourceAccount,
		"destination":              entry.DestinationAccount,
		domain.PayloadReservations: heldAmounts(reservations),
		"error":                    cause.Error(),
	})
}

// settle routes a gateway answer to complete, fail or unknown.
func (s *settler) settle(
	ctx context.Context,
	entry *domain.TransferLedgerEntry,
	ack *domain.GatewayAck,
	callErr error,
	reservations []reservation,
) (outcome string, err error) {
	switch {
	case callErr == nil:
		if err := s.complete(ctx, entry, ack, reservations); err != nil {
			return "unrecorded", err
		}
		return "completed", nil
	case errors.Is(callErr, domain.ErrOutcomeUnknown):
		s.unknown(ctx, entry, callErr, reservations)
		return "unknown", callErr
	default:
		s.fail(ctx, entry, callErr, reservations)
		return "failed", callErr
	}
}
