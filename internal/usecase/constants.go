package usecase

import "time"

// Fallbacks applied when the corresponding configuration value is unset.
const (
	DefaultLocalCurrency     = "LYD"
	DefaultPostingLockTTL    = 2 * time.Minute
	DefaultCustomerStatusTTL = 15 * time.Minute
	IdempotencyKeyTTL        = 24 * time.Hour
)

// DefaultTransactionTimeout caps a single bookkeeping transaction. Gateway
// calls never run inside one.
const DefaultTransactionTimeout = 10 * time.Second

// Key namespaces inside the shared cache and lock stores.
const (
	postingLockPrefix    = "payroll:cycle:"
	customerStatusPrefix = "customer-status:"
)
