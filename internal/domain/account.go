package domain

import "strings"

// Salary entry account types. Only AccountTypeBank can be paid through a group transfer.
const (
	AccountTypeBank   = "account"
	AccountTypeWallet = "wallet"
)

// BankAccountLength is the length of a core-banking account number.
const BankAccountLength = 13

const (
	customerNumberOffset = 3
	customerNumberLength = 6
)

// CustomerNumber extracts the customer number embedded in an account number.
// It returns an empty string when the account is too short to carry one.
func CustomerNumber(account string) string {
	account = strings.TrimSpace(account)
	if len(account) < customerNumberOffset+customerNumberLength {
		return ""
	}
	return account[customerNumberOffset : customerNumberOffset+customerNumberLength]
}

// IsBankAccountNumber reports whether s is exactly 13 ASCII digits.
func IsBankAccountNumber(s string) bool {
	if len(s) != BankAccountLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ClassifyMode maps a customer status code to a transfer mode.
// Codes listed in businessCodes are B2B, everything else is B2C.
func ClassifyMode(statusCode string, businessCodes []string) TransferMode {
	statusCode = strings.TrimSpace(statusCode)
	for _, code := range businessCodes {
		if strings.EqualFold(statusCode, strings.TrimSpace(code)) {
			return TransferModeB2B
		}
	}
	return TransferModeB2C
}
