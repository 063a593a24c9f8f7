package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType represents the product type of a bank account
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// Account represents a bank account as reported by the Authority.
// The Authority is the system of record; the core only reads accounts,
// except for the speculative balance patch applied by the reconciler.
type Account struct {
	ID            string
	AccountNumber string
	Nickname      string
	Type          AccountType
	Balance       decimal.Decimal
}

// DisplayName returns the nickname if set, otherwise the account type
func (a *Account) DisplayName() string {
	if a.Nickname != "" {
		return a.Nickname
	}
	return string(a.Type)
}
