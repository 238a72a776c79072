package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/transferhub/internal/domain"
	"github.com/iho/transferhub/internal/infrastructure/logger"
)

// LookupUseCase wraps the gateway's read-only queries.
type LookupUseCase struct {
	gateway       Gateway
	cache         Cache
	businessCodes []string
	statusTTL     time.Duration
	logger        zerolog.Logger
}

// NewLookupUseCase creates a new LookupUseCase. cache may be nil.
func NewLookupUseCase(
	gateway Gateway,
	cache Cache,
	businessCodes []string,
	statusTTL time.Duration,
	log zerolog.Logger,
) *LookupUseCase {
	if statusTTL <= 0 {
		statusTTL = DefaultCustomerStatusTTL
	}
	return &LookupUseCase{
		gateway:       gateway,
		cache:         cache,
		businessCodes: businessCodes,
		statusTTL:     statusTTL,
		logger:        log,
	}
}

// CustomerOverview is a customer's status and accounts.
type CustomerOverview struct {
	Customer *domain.CustomerInfo
	Mode     domain.TransferMode
	Accounts *domain.AccountList
}

// ListAccounts returns the customer's accounts with balances.
func (uc *LookupUseCase) ListAccounts(ctx context.Context, customerID string) (*domain.AccountList, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, domain.ErrMissingCustomer
	}
	return uc.gateway.GetAccounts(ctx, customerID)
}

// Statement returns account transactions by date range or count.
func (uc *LookupUseCase) Statement(ctx context.Context, query domain.StatementQuery) (*domain.Statement, error) {
	query.Account = strings.TrimSpace(query.Account)
	if err := domain.ValidateAccount(query.Account); err != nil {
		return nil, err
	}
	if !query.From.IsZero() && !query.To.IsZero() && query.From.After(query.To) {
		return nil, domain.ErrInvalidDateRange
	}
	if query.Count < 0 {
		query.Count = 0
	}
	return uc.gateway.GetStatement(ctx, query)
}

// CustomerStatus returns the customer's status code, served from cache when possible.
func (uc *LookupUseCase) CustomerStatus(ctx context.Context, customerID string) (*domain.CustomerInfo, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, domain.ErrMissingCustomer
	}

	log := logger.WithContext(ctx, uc.logger)
	key := customerStatusPrefix + customerID

	if uc.cache != nil {
		code, err := uc.cache.Get(ctx, key)
		if err == nil {
			return &domain.CustomerInfo{CustomerID: customerID, StatusCode: code}, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Warn().Err(err).Str("customer_id", customerID).Msg("customer status cache read failed")
		}
	}

	info, err := uc.gateway.GetCustomerInfo(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, info.StatusCode, uc.statusTTL); err != nil {
			log.Warn().Err(err).Str("customer_id", customerID).Msg("customer status cache write failed")
		}
	}

	return info, nil
}

// ClassifyTransferMode labels an account's owner as business or retail.
func (uc *LookupUseCase) ClassifyTransferMode(ctx context.Context, account string) (domain.TransferMode, error) {
	customerID := domain.CustomerNumber(account)
	if customerID == "" {
		return domain.TransferModeB2C, domain.ErrInvalidAccount
	}

	info, err := uc.CustomerStatus(ctx, customerID)
	if err != nil {
		return domain.TransferModeB2C, err
	}
	return domain.ClassifyMode(info.StatusCode, uc.businessCodes), nil
}

// CustomerOverview fetches status and accounts in parallel.
func (uc *LookupUseCase) CustomerOverview(ctx context.Context, customerID string) (*CustomerOverview, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, domain.ErrMissingCustomer
	}

	var overview CustomerOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := uc.CustomerStatus(gctx, customerID)
		if err != nil {
			return err
		}
		overview.Customer = info
		overview.Mode = domain.ClassifyMode(info.StatusCode, uc.businessCodes)
		return nil
	})
	g.Go(func() error {
		accounts, err := uc.gateway.GetAccounts(gctx, customerID)
		if err != nil {
			return err
		}
		overview.Accounts = accounts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &overview, nil
}
