package transfer

import "errors"

var (
	// ErrBusy is returned when a submission arrives while one is already
	// being processed. Submissions are rejected, never queued.
	ErrBusy = errors.New("a submission is already being processed")

	// ErrWrongStep is returned when an action does not match the session's
	// current step (e.g. an OTP submission while entering details).
	ErrWrongStep = errors.New("action not allowed in the current step")

	// ErrClosed is returned for any action on a torn-down session
	ErrClosed = errors.New("transfer session is closed")
)
