package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/postgres/generated"
	"github.com/iho/transferhub/internal/usecase"
)

// LimitCounterRepository implements usecase.LimitCounterRepository.
// A reservation is a single conditional upsert, so concurrent debits of one
// company serialize on the counter row instead of racing on a ledger sum.
type LimitCounterRepository struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewLimitCounterRepository creates a new LimitCounterRepository.
func NewLimitCounterRepository(db generated.DBTX) *LimitCounterRepository {
	return &LimitCounterRepository{
		queries: generated.New(db),
		now:     time.Now,
	}
}

// Reserve adds amount to the counter inside tx unless that would cross max.
func (r *LimitCounterRepository) Reserve(ctx context.Context, tx usecase.Transaction, key domain.LimitCounterKey, amount, max decimal.Decimal) (bool, error) {
	queries, err := queriesIn(tx)
	if err != nil {
		return false, err
	}

	n, err := queries.ReserveLimitCounter(ctx, generated.ReserveLimitCounterParams{
		CompanyID:  key.CompanyID,
		CategoryID: key.CategoryID,
		Currency:   key.Currency,
		Period:     string(key.Period),
		PeriodKey:  key.PeriodKey,
		Amount:     decimalToNumeric(amount),
		UpdatedAt:  timeToPgTimestamptz(r.now()),
		MaxAmount:  decimalToNumeric(max),
	})
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Release gives back a reservation after the debit failed. The counter never goes below zero.
func (r *LimitCounterRepository) Release(ctx context.Context, key domain.LimitCounterKey, amount decimal.Decimal) error {
	return r.queries.ReleaseLimitCounter(ctx, generated.ReleaseLimitCounterParams{
		Amount:     decimalToNumeric(amount),
		UpdatedAt:  timeToPgTimestamptz(r.now()),
		CompanyID:  key.CompanyID,
		CategoryID: key.CategoryID,
		Currency:   key.Currency,
		Period:     string(key.Period),
		PeriodKey:  key.PeriodKey,
	})
}
