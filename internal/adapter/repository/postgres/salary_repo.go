package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/postgres/generated"
	"github.com/iho/transferhub/internal/usecase"
)

// SalaryRepository implements usecase.SalaryRepository.
type SalaryRepository struct {
	queries *generated.Queries
}

// NewSalaryRepository creates a new SalaryRepository.
func NewSalaryRepository(db generated.DBTX) *SalaryRepository {
	return &SalaryRepository{queries: generated.New(db)}
}

// GetCycleWithEntries loads a cycle and all of its entries.
func (r *SalaryRepository) GetCycleWithEntries(ctx context.Context, id string) (*domain.SalaryCycle, error) {
	row, err := r.queries.GetSalaryCycle(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCycleNotFound
		}
		return nil, err
	}

	rows, err := r.queries.ListSalaryEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list salary entries: %w", err)
	}

	cycle := &domain.SalaryCycle{
		ID:              row.ID,
		CompanyID:       row.CompanyID,
		SalaryMonth:     row.SalaryMonth,
		DebitAccount:    row.DebitAccount,
		Currency:        row.Currency,
		CreatedByUserID: row.CreatedByUserID,
		Total:           numericToDecimal(row.Total),
		BatchReference:  row.BatchReference,
		PostedAt:        pgTimestamptzToTimePtr(row.PostedAt),
		PostedByUserID:  textToStringPtr(row.PostedByUserID),
		Entries:         make([]*domain.SalaryEntry, 0, len(rows)),
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}

	for _, e := range rows {
		cycle.Entries = append(cycle.Entries, &domain.SalaryEntry{
			ID:             e.ID,
			CycleID:        e.CycleID,
			EmployeeID:     e.EmployeeID,
			AccountType:    e.AccountType,
			AccountNumber:  e.AccountNumber,
			Amount:         numericToDecimal(e.Amount),
			Commission:     numericToDecimal(e.Commission),
			IsTransferred:  e.IsTransferred,
			TransferredAt:  pgTimestamptzToTimePtr(e.TransferredAt),
			PostedByUserID: textToStringPtr(e.PostedByUserID),
		})
	}

	return cycle, nil
}

// SavePosting stamps the cycle and locks the transferred entries inside tx.
// Entries that were already transferred or a cycle that was already posted abort the save.
func (r *SalaryRepository) SavePosting(ctx context.Context, tx usecase.Transaction, cycle *domain.SalaryCycle, entries []*domain.SalaryEntry) error {
	queries, err := queriesIn(tx)
	if err != nil {
		return err
	}

	// 1. Cycle header
	if cycle.PostedAt != nil {
		n, err := queries.UpdateSalaryCyclePosting(ctx, generated.UpdateSalaryCyclePostingParams{
			ID:             cycle.ID,
			BatchReference: cycle.BatchReference,
			PostedAt:       timePtrToPgTimestamptz(cycle.PostedAt),
			PostedByUserID: stringPtrToText(cycle.PostedByUserID),
			Total:          decimalToNumeric(cycle.Total),
			UpdatedAt:      timeToPgTimestamptz(cycle.UpdatedAt),
		})
		if err != nil {
			return fmt.Errorf("update salary cycle: %w", err)
		}
		if n == 0 {
			return domain.ErrCycleAlreadyPosted
		}
	}

	// 2. Transferred entries
	for _, e := range entries {
		n, err := queries.MarkSalaryEntryTransferred(ctx, generated.MarkSalaryEntryTransferredParams{
			ID:             e.ID,
			TransferredAt:  timePtrToPgTimestamptz(e.TransferredAt),
			PostedByUserID: stringPtrToText(e.PostedByUserID),
			Commission:     decimalToNumeric(e.Commission),
		})
		if err != nil {
			return fmt.Errorf("mark salary entry %s: %w", e.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrEntryLocked, e.ID)
		}
	}

	return nil
}
