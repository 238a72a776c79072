package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Wire amounts are unsigned integers holding value × 10^AmountScale, left-padded to AmountWidth.
const (
	AmountScale = 3
	AmountWidth = 15
)

// ZeroWireAmount is the encoding of a disabled leg.
var ZeroWireAmount = strings.Repeat("0", AmountWidth)

// EncodeAmount renders d as a fixed-width wire amount. Digits beyond the third decimal are truncated.
func EncodeAmount(d decimal.Decimal) (string, error) {
	if d.IsNegative() {
		return "", fmt.Errorf("%w: %s", ErrNegativeAmount, d)
	}

	scaled := d.Shift(AmountScale).Truncate(0)
	digits := scaled.String()
	if len(digits) > AmountWidth {
		return "", fmt.Errorf("%w: %s", ErrAmountOverflow, d)
	}

	return strings.Repeat("0", AmountWidth-len(digits)) + digits, nil
}

// DecodeAmount parses a fixed-width wire amount back into a decimal.
func DecodeAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > AmountWidth {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidWireAmount, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidWireAmount, s)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidWireAmount, err)
	}

	return d.Shift(-AmountScale), nil
}
