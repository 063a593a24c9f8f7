package domain

import (
	"context"
)

// ChallengeResult is returned by a successful InitiateTransfer call.
// The code is opaque to the core: it is disclosed to the user for a bounded
// window and never validated client-side beyond display.
type ChallengeResult struct {
	Code    string
	Message string
}

// ExecutionResult is returned by a successful ExecuteTransfer call
type ExecutionResult struct {
	Message string
}

// TransferAuthority defines the two operations the core consumes from the
// OTP Challenge Authority collaborator.
type TransferAuthority interface {
	// InitiateTransfer requests a passcode be issued for the given intent.
	// It does not move funds.
	InitiateTransfer(ctx context.Context, intent *TransferIntent) (*ChallengeResult, error)

	// ExecuteTransfer verifies the passcode against the previously initiated
	// intent and, if valid, performs the funds movement atomically server-side.
	ExecuteTransfer(ctx context.Context, intent *TransferIntent, otp string) (*ExecutionResult, error)
}

// AccountSource defines the interface for reading the user's account set
// from the Authority. The listing is the source of truth for balances and
// supersedes any optimistic patch applied locally.
type AccountSource interface {
	// ListAccounts retrieves all accounts owned by the authenticated user
	ListAccounts(ctx context.Context) ([]*Account, error)
}
