package transfer

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/bankflow/internal/domain"
	"github.com/simaogato/bankflow/internal/usecase/accounts"
	"github.com/simaogato/bankflow/internal/usecase/disclosure"
	"github.com/simaogato/bankflow/internal/usecase/feedback"
	"github.com/simaogato/bankflow/internal/usecase/intent"
	"github.com/simaogato/bankflow/internal/usecase/reconciler"
)

// DefaultMaxOtpRetries is how many failed execute attempts are tolerated
// before the session is cancelled back to the details step.
const DefaultMaxOtpRetries = 3

// Hooks are the notifications a session emits to its page-level caller.
// Both run synchronously under the session's lock and must not call back
// into the session.
type Hooks struct {
	// OnTransferSuccess is invoked once per successful execute.
	// shouldRefetch is false: the optimistic patch is considered sufficient,
	// the caller may still refresh independently.
	OnTransferSuccess func(message string, shouldRefetch bool)

	// OnOptimisticBalanceUpdate is invoked with the reconciler's patch
	// parameters so a caller-owned account store can apply the same
	// adjustment.
	OnOptimisticBalanceUpdate func(patch reconciler.Patch)
}

// Config assembles a session's collaborators
type Config struct {
	Authority  domain.TransferAuthority
	Accounts   *accounts.Cache
	Disclosure *disclosure.Timer
	Feedback   *feedback.Expiry
	Hooks      Hooks

	// MaxOtpRetries caps failed execute attempts per challenge.
	// Zero selects DefaultMaxOtpRetries; a negative value disables the cap.
	MaxOtpRetries int

	Log zerolog.Logger
}

// Session is the authoritative orchestrator of one two-phase transfer
// attempt. It owns the TransferSession state exclusively; callers observe
// it only through State() snapshots.
//
// The guard flips status to Processing under the lock and performs the
// Authority call outside it, so a concurrent submission is rejected with
// ErrBusy rather than blocked or queued. Results are applied under the lock
// gated on an epoch: a cancel or reset that happened mid-flight bumps the
// epoch and the stale result is discarded.
type Session struct {
	id         uuid.UUID
	authority  domain.TransferAuthority
	accounts   *accounts.Cache
	disclosure *disclosure.Timer
	feedback   *feedback.Expiry
	hooks      Hooks
	maxRetries int
	log        zerolog.Logger

	mu           sync.Mutex
	epoch        uint64
	step         domain.Step
	status       domain.Status
	feedbackMsg  string
	storedIntent *domain.TransferIntent
	enteredOtp   string
	otpAttempts  int
	closed       bool
}

// NewSession creates a session in Details/Idle
func NewSession(cfg Config) *Session {
	maxRetries := cfg.MaxOtpRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxOtpRetries
	}

	id := uuid.New()
	return &Session{
		id:         id,
		authority:  cfg.Authority,
		accounts:   cfg.Accounts,
		disclosure: cfg.Disclosure,
		feedback:   cfg.Feedback,
		hooks:      cfg.Hooks,
		maxRetries: maxRetries,
		log:        cfg.Log.With().Str("component", "transfer_session").Str("session_id", id.String()).Logger(),
		step:       domain.StepDetails,
		status:     domain.StatusIdle,
	}
}

// ID returns the session identifier
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns a snapshot of the session
func (s *Session) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.SessionState{
		Step:            s.step,
		Status:          s.status,
		FeedbackMessage: s.feedbackMsg,
		EnteredOtp:      s.enteredOtp,
	}
	if s.storedIntent != nil {
		copied := *s.storedIntent
		state.StoredIntent = &copied
	}
	return state
}

// Disclosure returns a snapshot of the OTP disclosure state
func (s *Session) Disclosure() disclosure.State {
	return s.disclosure.Snapshot()
}

// SubmitDetails validates the entered details and asks the Authority to
// issue a challenge. On success the session advances to the OTP step and
// the returned code is disclosed for the bounded window.
func (s *Session) SubmitDetails(ctx context.Context, input intent.DetailsInput) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.status == domain.StatusProcessing {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.step != domain.StepDetails {
		s.mu.Unlock()
		return ErrWrongStep
	}

	built, err := intent.Build(input, s.accounts.List())
	if err != nil {
		s.failLocked(err.Error())
		s.mu.Unlock()
		return err
	}

	s.status = domain.StatusProcessing
	s.feedbackMsg = "Initiating transfer..."
	s.feedback.Cancel()
	epoch := s.epoch
	s.mu.Unlock()

	s.log.Info().
		Str("transfer_type", string(built.Type)).
		Str("from", built.FromAccountID).
		Msg("Initiating transfer")

	result, callErr := s.authority.InitiateTransfer(ctx, built)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epoch != epoch {
		// Cancelled or reset while the call was in flight; drop the result
		return nil
	}

	if callErr != nil {
		s.logAuthorityError("initiate", callErr)
		s.storedIntent = nil
		s.failLocked(rejectionMessage(callErr, "Failed to initiate transfer."))
		return callErr
	}

	s.storedIntent = built
	s.enteredOtp = ""
	s.otpAttempts = 0
	s.step = domain.StepOtp
	s.status = domain.StatusIdle
	s.feedbackMsg = result.Message
	if s.feedbackMsg == "" {
		s.feedbackMsg = "Challenge issued. Enter the one-time passcode."
	}
	s.disclosure.Start(result.Code)
	return nil
}

// SubmitOtp verifies the entered passcode by executing the stored intent.
// On rejection the passcode and stored intent are retained so the user can
// correct and retry immediately, up to the retry cap.
func (s *Session) SubmitOtp(ctx context.Context, otp string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.status == domain.StatusProcessing {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.step != domain.StepOtp || s.storedIntent == nil {
		s.mu.Unlock()
		return ErrWrongStep
	}

	if !domain.ValidOtp(otp) {
		err := &domain.ValidationError{Field: "otp", Reason: "passcode must be exactly 6 digits"}
		s.failLocked(err.Error())
		s.mu.Unlock()
		return err
	}

	s.enteredOtp = otp
	s.status = domain.StatusProcessing
	s.feedbackMsg = "Verifying passcode and completing transfer..."
	s.feedback.Cancel()
	epoch := s.epoch
	executed := *s.storedIntent
	s.mu.Unlock()

	result, callErr := s.authority.ExecuteTransfer(ctx, &executed, otp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epoch != epoch {
		return nil
	}

	if callErr != nil {
		s.logAuthorityError("execute", callErr)
		return s.executeFailedLocked(callErr)
	}

	patch := reconciler.Patch{
		FromAccountID: executed.FromAccountID,
		ToAccountID:   executed.ToAccountID,
		Amount:        executed.Amount,
		Type:          executed.Type,
	}
	s.accounts.ApplyPatch(patch)
	if s.hooks.OnOptimisticBalanceUpdate != nil {
		s.hooks.OnOptimisticBalanceUpdate(patch)
	}

	message := result.Message
	if message == "" {
		message = "Transfer completed successfully."
	}
	if s.hooks.OnTransferSuccess != nil {
		s.hooks.OnTransferSuccess(message, false)
	}

	s.enteredOtp = ""
	s.storedIntent = nil
	s.status = domain.StatusSuccess
	s.feedbackMsg = message
	s.disclosure.Cancel()

	// After the success dwell the session resets to Details/Idle
	s.scheduleExpiryLocked(epoch, true)

	s.log.Info().Str("from", executed.FromAccountID).Msg("Transfer executed")
	return nil
}

// Cancel discards the stored intent and entered passcode, stops the
// disclosure and any pending feedback expiry, and returns the session to
// Details/Idle. Safe to call at any time, idempotently; a result still in
// flight when Cancel runs is discarded when it lands.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.resetLocked()
	s.feedbackMsg = "Transfer cancelled."
	s.log.Info().Msg("Transfer cancelled")
}

// Close tears the session down: all timers are stopped and any late
// callback or in-flight result is discarded. The session rejects all
// further actions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.resetLocked()
	s.closed = true
}

// executeFailedLocked handles an execute rejection: feedback turns to the
// error, while the passcode and stored intent survive for immediate retry.
// Exceeding the retry cap cancels the session instead.
func (s *Session) executeFailedLocked(callErr error) error {
	s.otpAttempts++
	if s.maxRetries > 0 && s.otpAttempts >= s.maxRetries {
		s.resetLocked()
		s.failLocked("Too many failed attempts. Transfer cancelled.")
		return callErr
	}

	s.failLocked(rejectionMessage(callErr, "Transfer failed. Check the passcode and try again."))
	return callErr
}

// failLocked records an error status with feedback and arranges for both
// to clear after the dwell. Retained fields (per-step) are untouched.
func (s *Session) failLocked(message string) {
	s.status = domain.StatusError
	s.feedbackMsg = message
	s.scheduleExpiryLocked(s.epoch, false)
}

// scheduleExpiryLocked arranges the feedback dwell. fullReset selects the
// post-success behavior: a complete return to Details/Idle.
func (s *Session) scheduleExpiryLocked(epoch uint64, fullReset bool) {
	s.feedback.Schedule(func() {
		s.expireFeedback(epoch, fullReset)
	})
}

// expireFeedback is the dwell callback. The epoch gate keeps a late timer
// from mutating a session that was cancelled, reset or closed meanwhile.
func (s *Session) expireFeedback(epoch uint64, fullReset bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.epoch != epoch {
		return
	}

	if fullReset {
		s.resetLocked()
		return
	}
	s.feedbackMsg = ""
	s.status = domain.StatusIdle
}

// resetLocked returns the session to its initial state and invalidates all
// outstanding callbacks and in-flight results. Callers must hold s.mu.
func (s *Session) resetLocked() {
	s.epoch++
	s.step = domain.StepDetails
	s.status = domain.StatusIdle
	s.feedbackMsg = ""
	s.storedIntent = nil
	s.enteredOtp = ""
	s.otpAttempts = 0
	s.disclosure.Cancel()
	s.feedback.Cancel()
}

// logAuthorityError logs transport failures distinctly from business
// rejections; the user-facing handling is the same.
func (s *Session) logAuthorityError(op string, err error) {
	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		s.log.Error().Err(transportErr.Err).Str("op", op).Msg("Authority call failed at transport level")
		return
	}
	s.log.Warn().Err(err).Str("op", op).Msg("Authority rejected the request")
}

// rejectionMessage surfaces the Authority's message verbatim when there is
// one, falling back to a generic message otherwise.
func rejectionMessage(err error, fallback string) string {
	var challengeErr *domain.ChallengeRejectedError
	if errors.As(err, &challengeErr) && challengeErr.Message != "" {
		return challengeErr.Message
	}
	var executionErr *domain.ExecutionRejectedError
	if errors.As(err, &executionErr) && executionErr.Message != "" {
		return executionErr.Message
	}
	return fallback
}
