package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/transferhub/internal/domain"
)

// Gateway is the core banking gateway.
type Gateway interface {
	PostTransfer(ctx context.Context, order domain.TransferOrder) (*domain.GatewayAck, error)
	PostGroupTransfer(ctx context.Context, order domain.GroupTransferOrder) (*domain.GroupTransferResult, error)
	ReverseTransfer(ctx context.Context, order domain.ReversalOrder) (*domain.GatewayAck, error)
	GetCustomerInfo(ctx context.Context, customerID string) (*domain.CustomerInfo, error)
	GetAccounts(ctx context.Context, customerID string) (*domain.AccountList, error)
	GetStatement(ctx context.Context, query domain.StatementQuery) (*domain.Statement, error)
}

// LedgerRepository defines data access for transfer ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.TransferLedgerEntry) error
	MarkCompleted(ctx context.Context, id, bankReference string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error
	GetByID(ctx context.Context, id string) (*domain.TransferLedgerEntry, error)
	GetByReference(ctx context.Context, reference string) (*domain.TransferLedgerEntry, error)
	// FindActiveRefund returns the non-failed refund of originalReference or ErrLedgerEntryNotFound.
	FindActiveRefund(ctx context.Context, originalReference string) (*domain.TransferLedgerEntry, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*domain.TransferLedgerEntry, error)
	// SumSince totals pending and completed debits of a company/category/currency from since onwards.
	SumSince(ctx context.Context, companyID, categoryID, currency string, since time.Time) (decimal.Decimal, error)
}

// PricingRepository reads package, pricing and limit records.
type PricingRepository interface {
	CompanyPackageID(ctx context.Context, companyID string) (string, error)
	GetPackageCategory(ctx context.Context, packageID, categoryID string) (*domain.PackageCategory, error)
	GetRule(ctx context.Context, categoryID string) (*domain.PricingRule, error)
	ListLimits(ctx context.Context, packageID, categoryID, currency string) ([]domain.TransferLimit, error)
}

// LimitCounterRepository holds reserved aggregates per company and period.
type LimitCounterRepository interface {
	// Reserve adds amount to the counter unless the result would exceed max.
	// It reports false without changing anything when the cap would be crossed.
	Reserve(ctx context.Context, tx Transaction, key domain.LimitCounterKey, amount, max decimal.Decimal) (bool, error)
	Release(ctx context.Context, key domain.LimitCounterKey, amount decimal.Decimal) error
}

// SalaryRepository defines data access for salary cycles.
type SalaryRepository interface {
	GetCycleWithEntries(ctx context.Context, id string) (*domain.SalaryCycle, error)
	SavePosting(ctx context.Context, tx Transaction, cycle *domain.SalaryCycle, entries []*domain.SalaryEntry) error
}

// ReconciliationRepository defines data access for reconciliation cases.
type ReconciliationRepository interface {
	Create(ctx context.Context, c *domain.ReconciliationCase) error
	GetByID(ctx context.Context, id string) (*domain.ReconciliationCase, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*domain.ReconciliationCase, error)
	ListUnnotified(ctx context.Context, limit int) ([]*domain.ReconciliationCase, error)
	MarkNotified(ctx context.Context, id string, notifiedAt time.Time) error
	Resolve(ctx context.Context, c *domain.ReconciliationCase) error
	HasOpenForResource(ctx context.Context, resourceID string) (bool, error)
}

// CaseRecorder opens reconciliation cases. It never fails the caller.
type CaseRecorder interface {
	Open(ctx context.Context, kind domain.CaseKind, reference, resourceID string, payload map[string]any) *domain.ReconciliationCase
}

// CaseTracker also answers whether a resource still has an unresolved case.
type CaseTracker interface {
	CaseRecorder
	HasOpen(ctx context.Context, resourceID string) (bool, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries operations that failed with a transient database error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator issues 16-character correlation references.
type ReferenceGenerator interface {
	New() string
	NewBatch(n int) (string, []string)
}

// PostingLocker serializes postings of the same salary cycle.
type PostingLocker interface {
	// Acquire returns a token, or ErrPostingInProgress when the key is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	Release(ctx context.Context, key, token string) error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// ModeClassifier decides whether an account belongs to a business customer.
type ModeClassifier interface {
	ClassifyTransferMode(ctx context.Context, account string) (domain.TransferMode, error)
}
