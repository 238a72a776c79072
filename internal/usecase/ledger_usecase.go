package usecase

import (
	"context"
	"strings"

	"github.com/iho/transferhub/internal/domain"
)

// LedgerUseCase answers read queries over the transfer ledger.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new ledger query use case
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledgerRepo: ledgerRepo}
}

// GetEntry returns one ledger entry by id.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id string) (*domain.TransferLedgerEntry, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// GetByReference returns the entry carrying a correlation reference.
func (uc *LedgerUseCase) GetByReference(ctx context.Context, reference string) (*domain.TransferLedgerEntry, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.ErrMissingReference
	}
	return uc.ledgerRepo.GetByReference(ctx, reference)
}

// ListByCompany returns a company's entries, newest first.
func (uc *LedgerUseCase) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*domain.TransferLedgerEntry, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, domain.ErrMissingCustomer
	}

	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.ledgerRepo.ListByCompany(ctx, companyID, limit, offset)
}
