package intent

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simaogato/bankflow/internal/domain"
)

// DetailsInput represents the raw, user-entered transfer details.
// Amount stays string-encoded until it is parsed here, to avoid
// floating-point error on the way in.
type DetailsInput struct {
	Type                   domain.TransferType
	FromAccountID          string
	ToAccountID            string
	RecipientAccountNumber string
	Amount                 string
	Description            string
}

// Build validates user-entered details against the caller's account set and
// assembles a canonical TransferIntent.
// Logic:
//  1. Source account must be non-empty and present in the account set
//  2. Internal: at least two accounts must exist, destination must be in the
//     set and differ from the source
//  3. External: recipient number is stripped of non-digits, then must be
//     5 to 20 digits
//  4. Amount must parse as a finite decimal > 0
//  5. Description defaults to a generated label if absent
//
// Returns a *domain.ValidationError naming the offending field on failure.
// Pure: no network calls, no mutation of the account set.
func Build(input DetailsInput, accounts []*domain.Account) (*domain.TransferIntent, error) {
	if input.FromAccountID == "" {
		return nil, &domain.ValidationError{Field: "fromAccountId", Reason: "source account is required"}
	}
	if findAccount(accounts, input.FromAccountID) == nil {
		return nil, &domain.ValidationError{Field: "fromAccountId", Reason: "source account not found"}
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	built := &domain.TransferIntent{
		Type:          input.Type,
		FromAccountID: input.FromAccountID,
		Amount:        amount,
		Description:   strings.TrimSpace(input.Description),
	}

	switch input.Type {
	case domain.TransferTypeInternal:
		if len(accounts) < 2 {
			return nil, &domain.ValidationError{Field: "toAccountId", Reason: "at least two accounts are required for an internal transfer"}
		}
		to := findAccount(accounts, input.ToAccountID)
		if input.ToAccountID == "" || to == nil {
			return nil, &domain.ValidationError{Field: "toAccountId", Reason: "destination account not found"}
		}
		built.ToAccountID = input.ToAccountID
	case domain.TransferTypeExternal:
		// Strip non-digits before validating, never truncate mid-digit
		built.RecipientAccountNumber = stripNonDigits(input.RecipientAccountNumber)
	default:
		return nil, &domain.ValidationError{Field: "transferType", Reason: "transfer type must be internal or external"}
	}

	if built.Description == "" {
		built.Description = defaultDescription(built)
	}

	// Final shape check (same-account, recipient pattern, positive amount)
	if err := built.Validate(); err != nil {
		return nil, err
	}

	return built, nil
}

// ReselectFrom returns a valid source account selection after the account
// set changed: the current selection if still present, otherwise the first
// available account, otherwise empty.
func ReselectFrom(fromAccountID string, accounts []*domain.Account) string {
	if findAccount(accounts, fromAccountID) != nil {
		return fromAccountID
	}
	if len(accounts) > 0 {
		return accounts[0].ID
	}
	return ""
}

// ReselectTo returns a valid internal destination selection: the current
// selection if it is still an eligible option (present and different from
// the source), otherwise the first eligible alternative, otherwise empty.
func ReselectTo(fromAccountID, toAccountID string, accounts []*domain.Account) string {
	to := findAccount(accounts, toAccountID)
	if to != nil && toAccountID != fromAccountID {
		return toAccountID
	}
	for _, acc := range accounts {
		if acc.ID != fromAccountID {
			return acc.ID
		}
	}
	return ""
}

// parseAmount parses a string-encoded amount and requires it to be > 0
func parseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "amount is required"}
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "amount must be a number"}
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, &domain.ValidationError{Field: "amount", Reason: "amount must be greater than zero"}
	}
	return amount, nil
}

// defaultDescription generates a label for intents submitted without one
func defaultDescription(i *domain.TransferIntent) string {
	if i.Type == domain.TransferTypeExternal {
		return fmt.Sprintf("Transfer to account %s", i.RecipientAccountNumber)
	}
	return "Transfer between own accounts"
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func findAccount(accounts []*domain.Account, id string) *domain.Account {
	if id == "" {
		return nil
	}
	for _, acc := range accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}
