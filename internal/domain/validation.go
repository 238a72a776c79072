package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall  = errors.New("amount below minimum allowed")
)

// Validation constants
const (
	MinAccountLength   = 10
	MaxTransferAmount  = "999999999999" // largest value that still encodes into 15 digits
	MinTransferAmount  = "0.001"
	MaxNarrativeLength = 140
)

// Currencies the gateway settles. LYD is the local currency.
var validCurrencies = map[string]bool{
	"LYD": true, "USD": true, "EUR": true, "GBP": true,
	"CHF": true, "TND": true, "EGP": true, "TRY": true,
	"AED": true, "SAR": true, "CNY": true, "JPY": true,
	"CAD": true, "SEK": true, "NOK": true, "DKK": true,
}

// NormalizeCurrency trims and upper-cases a currency code, falling back to def when empty.
func NormalizeCurrency(currency, def string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return strings.ToUpper(strings.TrimSpace(def))
	}
	return currency
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a settlement currency", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a transfer amount against the global caps.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount := decimal.RequireFromString(MinTransferAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinTransferAmount)
	}

	maxAmount := decimal.RequireFromString(MaxTransferAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransferAmount)
	}

	return nil
}

// ValidateAccount checks the minimum shape every gateway account must have.
func ValidateAccount(account string) error {
	account = strings.TrimSpace(account)
	if len(account) < MinAccountLength {
		return fmt.Errorf("%w: got %q", ErrInvalidAccount, account)
	}
	return nil
}

// TrimNarrative cuts a narrative down to what the gateway accepts, never splitting a character.
func TrimNarrative(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= MaxNarrativeLength {
		return s
	}
	cut := MaxNarrativeLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
