package reconciler

import (
	"github.com/shopspring/decimal"
	"github.com/simaogato/bankflow/internal/domain"
)

// Patch describes the speculative balance adjustment for a confirmed
// successful transfer: decrement the source balance, and for internal
// transfers increment the destination by the same amount.
type Patch struct {
	FromAccountID string
	ToAccountID   string // internal transfers only; empty for external
	Amount        decimal.Decimal
	Type          domain.TransferType
}

// Apply returns a copy of the account set with the patch applied.
// Logic:
//  1. Source account balance decreases by Amount
//  2. For internal transfers, destination balance increases by Amount
//  3. External transfers only decrement the source
//
// The input slice and its accounts are never mutated: the patch is layered
// over a snapshot, and the next full account listing from the Authority
// supersedes it. This is a latency hide, not a ledger.
func Apply(accounts []*domain.Account, patch Patch) []*domain.Account {
	patched := make([]*domain.Account, 0, len(accounts))

	for _, acc := range accounts {
		copied := *acc
		if copied.ID == patch.FromAccountID {
			copied.Balance = copied.Balance.Sub(patch.Amount)
		} else if patch.Type == domain.TransferTypeInternal && copied.ID == patch.ToAccountID {
			copied.Balance = copied.Balance.Add(patch.Amount)
		}
		patched = append(patched, &copied)
	}

	return patched
}
