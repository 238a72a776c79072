package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/postgres/generated"
	"github.com/iho/transferhub/internal/usecase"
)

const activeRefundIndex = "ux_transfer_ledger_active_refund"

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Create inserts a pending entry inside tx.
func (r *LedgerRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransferLedgerEntry) error {
	queries, err := queriesIn(tx)
	if err != nil {
		return err
	}

	err = queries.CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		ID:                    entry.ID,
		UserID:                entry.UserID,
		CompanyID:             entry.CompanyID,
		CategoryID:            entry.CategoryID,
		ServicePackageID:      entry.ServicePackageID,
		SourceAccount:         entry.SourceAccount,
		DestinationAccount:    entry.DestinationAccount,
		Amount:                decimalToNumeric(entry.Amount),
		Commission:            decimalToNumeric(entry.Commission),
		CommissionOnRecipient: entry.CommissionOnRecipient,
		ExchangeRate:          decimalToNumeric(entry.ExchangeRate),
		Currency:              entry.Currency,
		Mode:                  string(entry.Mode),
		Kind:                  string(entry.Kind),
		Status:                string(entry.Status),
		Description:           entry.Description,
		Reference:             entry.Reference,
		OriginalReference:     textOrNull(entry.OriginalReference),
		RequestedAt:           timeToPgTimestamptz(entry.RequestedAt),
	})
	if isUniqueViolation(err, activeRefundIndex) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRefunded, entry.OriginalReference)
	}

	return err
}

// MarkCompleted moves a pending entry to COMPLETED.
func (r *LedgerRepository) MarkCompleted(ctx context.Context, id, bankReference string, completedAt time.Time) error {
	n, err := r.queries.MarkLedgerEntryCompleted(ctx, generated.MarkLedgerEntryCompletedParams{
		ID:            id,
		BankReference: textOrNull(bankReference),
		CompletedAt:   timeToPgTimestamptz(completedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return r.transitionError(ctx, id)
	}

	return nil
}

// MarkFailed moves a pending entry to FAILED.
func (r *LedgerRepository) MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error {
	n, err := r.queries.MarkLedgerEntryFailed(ctx, generated.MarkLedgerEntryFailedParams{
		ID:            id,
		FailureReason: reason,
		CompletedAt:   timeToPgTimestamptz(failedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return r.transitionError(ctx, id)
	}

	return nil
}

// transitionError explains why a status update matched no pending row.
func (r *LedgerRepository) transitionError(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

// GetByID retrieves an entry by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.TransferLedgerEntry, error) {
	row, err := r.queries.GetLedgerEntryByID(ctx, id)
	if err != nil {
		return nil, mapLedgerError(err)
	}

	return rowToLedgerEntry(row), nil
}

// GetByReference retrieves an entry by its correlation reference.
func (r *LedgerRepository) GetByReference(ctx context.Context, reference string) (*domain.TransferLedgerEntry, error) {
	row, err := r.queries.GetLedgerEntryByReference(ctx, reference)
	if err != nil {
		return nil, mapLedgerError(err)
	}

	return rowToLedgerEntry(row), nil
}

// FindActiveRefund returns the pending or completed refund of originalReference.
func (r *LedgerRepository) FindActiveRefund(ctx context.Context, originalReference string) (*domain.TransferLedgerEntry, error) {
	row, err := r.queries.FindActiveRefund(ctx, textOrNull(originalReference))
	if err != nil {
		return nil, mapLedgerError(err)
	}

	return rowToLedgerEntry(row), nil
}

// ListByCompany lists a company's entries, newest first.
func (r *LedgerRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*domain.TransferLedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntriesByCompany(ctx, generated.ListLedgerEntriesByCompanyParams{
		CompanyID: companyID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.TransferLedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToLedgerEntry(row))
	}

	return entries, nil
}

// SumSince totals pending and completed debits from since onwards.
func (r *LedgerRepository) SumSince(ctx context.Context, companyID, categoryID, currency string, since time.Time) (decimal.Decimal, error) {
	total, err := r.queries.SumLedgerUsageSince(ctx, generated.SumLedgerUsageSinceParams{
		CompanyID:   companyID,
		CategoryID:  categoryID,
		Currency:    currency,
		RequestedAt: timeToPgTimestamptz(since),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func mapLedgerError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrLedgerEntryNotFound
	}
	return err
}

func rowToLedgerEntry(row generated.TransferLedger) *domain.TransferLedgerEntry {
	return &domain.TransferLedgerEntry{
		ID:                    row.ID,
		UserID:                row.UserID,
		CompanyID:             row.CompanyID,
		CategoryID:            row.CategoryID,
		ServicePackageID:      row.ServicePackageID,
		SourceAccount:         row.SourceAccount,
		DestinationAccount:    row.DestinationAccount,
		Amount:                numericToDecimal(row.Amount),
		Commission:            numericToDecimal(row.Commission),
		CommissionOnRecipient: row.CommissionOnRecipient,
		ExchangeRate:          numericToDecimal(row.ExchangeRate),
		Currency:              row.Currency,
		Mode:                  domain.TransferMode(row.Mode),
		Kind:                  domain.TransferKind(row.Kind),
		Status:                domain.TransferStatus(row.Status),
		Description:           row.Description,
		Reference:             row.Reference,
		BankReference:         row.BankReference.String,
		OriginalReference:     row.OriginalReference.String,
		FailureReason:         row.FailureReason,
		RequestedAt:           row.RequestedAt.Time,
		CompletedAt:           pgTimestamptzToTimePtr(row.CompletedAt),
	}
}
