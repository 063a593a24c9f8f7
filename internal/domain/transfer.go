package domain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// TransferType represents the destination kind of a transfer
type TransferType string

const (
	// TransferTypeInternal moves funds between two accounts of the same user
	TransferTypeInternal TransferType = "internal"
	// TransferTypeExternal moves funds to another user's account by account number
	TransferTypeExternal TransferType = "external"
)

// recipientNumberPattern matches a valid external recipient account number
var recipientNumberPattern = regexp.MustCompile(`^\d{5,20}$`)

// otpPattern matches a complete one-time passcode
var otpPattern = regexp.MustCompile(`^\d{6}$`)

// TransferIntent represents a validated, canonical transfer request.
// Immutable once handed to the Authority: the same intent that initiated
// a challenge must be presented again at execution.
type TransferIntent struct {
	Type                   TransferType
	FromAccountID          string
	ToAccountID            string // populated iff Type is internal
	RecipientAccountNumber string // populated iff Type is external
	Amount                 decimal.Decimal
	Description            string
}

// Validate ensures the intent adheres to the shape invariant:
// exactly one destination field is populated, consistent with Type,
// and the amount is strictly positive.
func (i *TransferIntent) Validate() error {
	if i.FromAccountID == "" {
		return &ValidationError{Field: "fromAccountId", Reason: "source account is required"}
	}
	if i.Amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Reason: "amount must be greater than zero"}
	}

	switch i.Type {
	case TransferTypeInternal:
		if i.ToAccountID == "" {
			return &ValidationError{Field: "toAccountId", Reason: "destination account is required for internal transfers"}
		}
		if i.ToAccountID == i.FromAccountID {
			return &ValidationError{Field: "toAccountId", Reason: "destination account must differ from source account"}
		}
		if i.RecipientAccountNumber != "" {
			return &ValidationError{Field: "recipientAccountNumber", Reason: "recipient account number is not allowed for internal transfers"}
		}
	case TransferTypeExternal:
		if !recipientNumberPattern.MatchString(i.RecipientAccountNumber) {
			return &ValidationError{Field: "recipientAccountNumber", Reason: "recipient account number must be 5 to 20 digits"}
		}
		if i.ToAccountID != "" {
			return &ValidationError{Field: "toAccountId", Reason: "destination account is not allowed for external transfers"}
		}
	default:
		return &ValidationError{Field: "transferType", Reason: "transfer type must be internal or external"}
	}

	return nil
}

// ValidOtp reports whether the entered passcode is a complete 6-digit code
func ValidOtp(otp string) bool {
	return otpPattern.MatchString(otp)
}
