package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/transferhub/internal/domain"
)

// PricingUseCase resolves commission, GL codes and limits for a transfer request.
// It has no side effects.
type PricingUseCase struct {
	pricingRepo PricingRepository
	ledgerRepo  LedgerRepository
	loc         *time.Location
}

// NewPricingUseCase creates a new PricingUseCase. Limit periods are cut in loc.
func NewPricingUseCase(pricingRepo PricingRepository, ledgerRepo LedgerRepository, loc *time.Location) *PricingUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &PricingUseCase{
		pricingRepo: pricingRepo,
		ledgerRepo:  ledgerRepo,
		loc:         loc,
	}
}

// QuoteInput represents input for pricing a transfer.
type QuoteInput struct {
	CompanyID  string
	PackageID  string // looked up from the company when empty
	CategoryID string
	Currency   string
	Amount     decimal.Decimal
	Rule       *domain.PricingRule // caller-supplied pricing overrides the stored rule
	At         time.Time
}

// Quote prices input and checks it against the package limits.
func (uc *PricingUseCase) Quote(ctx context.Context, input QuoteInput) (*domain.Quote, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	packageID := input.PackageID
	if packageID == "" {
		id, err := uc.pricingRepo.CompanyPackageID(ctx, input.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("resolve service package: %w", err)
		}
		packageID = id
	}

	// 1. Category must be enabled for the package
	pc, err := uc.pricingRepo.GetPackageCategory(ctx, packageID, input.CategoryID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryDisabled) {
			return nil, err
		}
		return nil, fmt.Errorf("load package category: %w", err)
	}
	if !pc.Enabled {
		return nil, fmt.Errorf("%w: %s", domain.ErrCategoryDisabled, input.CategoryID)
	}

	// 2. Pricing rule
	var rule domain.PricingRule
	if input.Rule != nil {
		rule = *input.Rule
		rule.CategoryID = input.CategoryID
	} else {
		r, err := uc.pricingRepo.GetRule(ctx, input.CategoryID)
		if err != nil {
			return nil, err
		}
		rule = *r
	}

	commission := rule.Commission(input.Amount)

	// 3. Limits against current usage
	limits, err := uc.pricingRepo.ListLimits(ctx, packageID, input.CategoryID, input.Currency)
	if err != nil {
		return nil, fmt.Errorf("load transfer limits: %w", err)
	}

	at := input.At
	if at.IsZero() {
		at = time.Now()
	}

	usage, err := uc.usage(ctx, input.CompanyID, input.CategoryID, input.Currency, limits, at)
	if err != nil {
		return nil, err
	}

	if err := domain.EvaluateLimits(limits, input.Amount, usage); err != nil {
		return nil, err
	}

	return &domain.Quote{
		Amount:     input.Amount,
		Commission: commission,
		Gross:      input.Amount.Add(commission),
		Rule:       rule,
		Limits:     limits,
	}, nil
}

// usage sums ledger debits for every capped period, one query per period in parallel.
func (uc *PricingUseCase) usage(
	ctx context.Context,
	companyID, categoryID, currency string,
	limits []domain.TransferLimit,
	at time.Time,
) (map[domain.Period]decimal.Decimal, error) {
	usage := make(map[domain.Period]decimal.Decimal, len(limits))

	periods := make(map[domain.Period]struct{})
	for _, l := range limits {
		if l.MaxAmount.IsPositive() {
			periods[l.Period] = struct{}{}
		}
	}
	if len(periods) == 0 {
		return usage, nil
	}

	local := at.In(uc.loc)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for p := range periods {
		g.Go(func() error {
			sum, err := uc.ledgerRepo.SumSince(gctx, companyID, categoryID, currency, p.Start(local))
			if err != nil {
				return fmt.Errorf("sum %s usage: %w", p, err)
			}
			mu.Lock()
			usage[p] = sum
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return usage, nil
}
