package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEncodeAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected string
		err      error
	}{
		{name: "three decimals", amount: "1500.125", expected: "000000001500125"},
		{name: "whole number", amount: "42", expected: "000000000042000"},
		{name: "zero", amount: "0", expected: "000000000000000"},
		{name: "extra decimals truncated", amount: "1.2349", expected: "000000000001234"},
		{name: "largest value", amount: "999999999999.999", expected: "999999999999999"},
		{name: "overflow", amount: "1000000000000", err: ErrAmountOverflow},
		{name: "negative", amount: "-1", err: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeAmount(decimal.RequireFromString(tt.amount))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
			if len(got) != AmountWidth {
				t.Errorf("expected width %d, got %d", AmountWidth, len(got))
			}
		})
	}
}

func TestDecodeAmount(t *testing.T) {
	got, err := DecodeAmount("000000001500125")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1500.125")) {
		t.Fatalf("expected 1500.125, got %s", got)
	}

	for _, bad := range []string{"", "12a", "-100", "1234567890123456", "1.5"} {
		if _, err := DecodeAmount(bad); !errors.Is(err, ErrInvalidWireAmount) {
			t.Errorf("expected ErrInvalidWireAmount for %q, got %v", bad, err)
		}
	}
}

func TestAmountRoundTrip(t *testing.T) {
	values := []string{
		"0.001", "0.01", "0.1", "1", "10.5", "1500.125", "99999.999",
		"123456789.012", "500000000000", "999999999999.999",
	}

	for _, v := range values {
		x := decimal.RequireFromString(v)
		encoded, err := EncodeAmount(x)
		if err != nil {
			t.Fatalf("encode %s: %v", v, err)
		}
		decoded, err := DecodeAmount(encoded)
		if err != nil {
			t.Fatalf("decode %s: %v", encoded, err)
		}
		if !decoded.Equal(x) {
			t.Errorf("round trip of %s gave %s", v, decoded)
		}
	}
}
