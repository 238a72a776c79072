package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/postgres/generated"
)

// PricingRepository implements usecase.PricingRepository over the reference tables
// maintained by the company and pricing services.
type PricingRepository struct {
	queries *generated.Queries
}

// NewPricingRepository creates a new PricingRepository.
func NewPricingRepository(db generated.DBTX) *PricingRepository {
	return &PricingRepository{queries: generated.New(db)}
}

// CompanyPackageID returns the service package assigned to a company.
func (r *PricingRepository) CompanyPackageID(ctx context.Context, companyID string) (string, error) {
	id, err := r.queries.GetCompanyPackageID(ctx, companyID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	if !id.Valid || id.String == "" {
		return "", fmt.Errorf("%w: company %s has no service package", domain.ErrCategoryDisabled, companyID)
	}

	return id.String, nil
}

// GetPackageCategory returns the category switch for a package. A missing row is a disabled category.
func (r *PricingRepository) GetPackageCategory(ctx context.Context, packageID, categoryID string) (*domain.PackageCategory, error) {
	row, err := r.queries.GetPackageCategory(ctx, generated.GetPackageCategoryParams{
		PackageID:  packageID,
		CategoryID: categoryID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCategoryDisabled, categoryID)
		}
		return nil, err
	}

	return &domain.PackageCategory{
		PackageID:  row.PackageID,
		CategoryID: row.CategoryID,
		Enabled:    row.Enabled,
	}, nil
}

// GetRule returns the pricing rule of a category.
func (r *PricingRepository) GetRule(ctx context.Context, categoryID string) (*domain.PricingRule, error) {
	row, err := r.queries.GetPricingRule(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPricingNotFound, categoryID)
		}
		return nil, err
	}

	return &domain.PricingRule{
		CategoryID:        row.CategoryID,
		Percentage:        numericToDecimal(row.Percentage),
		FixedFee:          numericToDecimal(row.FixedFee),
		DebitCode:         row.DebitCode,
		CreditCode:        row.CreditCode,
		DebitCode2:        row.DebitCode2,
		CreditCode2:       row.CreditCode2,
		CommissionAccount: row.CommissionAccount,
		Narrative:         row.Narrative,
		ApplySecondLeg:    row.ApplySecondLeg,
	}, nil
}

// ListLimits returns the limits configured for a package, category and currency.
func (r *PricingRepository) ListLimits(ctx context.Context, packageID, categoryID, currency string) ([]domain.TransferLimit, error) {
	rows, err := r.queries.ListTransferLimits(ctx, generated.ListTransferLimitsParams{
		PackageID:  packageID,
		CategoryID: categoryID,
		Currency:   currency,
	})
	if err != nil {
		return nil, err
	}

	limits := make([]domain.TransferLimit, 0, len(rows))
	for _, row := range rows {
		limits = append(limits, domain.TransferLimit{
			PackageID:  row.PackageID,
			CategoryID: row.CategoryID,
			Currency:   row.Currency,
			Period:     domain.Period(row.Period),
			MinAmount:  numericToDecimal(row.MinAmount),
			MaxAmount:  numericToDecimal(row.MaxAmount),
		})
	}

	return limits, nil
}
