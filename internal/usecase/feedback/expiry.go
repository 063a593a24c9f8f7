package feedback

import (
	"sync"
	"time"
)

// DefaultDwell is how long transient success/error feedback stays up
const DefaultDwell = 5 * time.Second

// Expiry auto-clears transient feedback after a fixed dwell. At most one
// pending expiry exists at a time: scheduling a new one cancels the prior,
// so timers never stack or overlap.
type Expiry struct {
	dwell time.Duration

	mu         sync.Mutex
	generation uint64
	pending    *time.Timer
}

// NewExpiry creates an expiry manager with the default 5s dwell
func NewExpiry() *Expiry {
	return NewExpiryWithDwell(DefaultDwell)
}

// NewExpiryWithDwell creates an expiry manager with a custom dwell
func NewExpiryWithDwell(dwell time.Duration) *Expiry {
	return &Expiry{dwell: dwell}
}

// Schedule arranges for fn to run once after the dwell elapses, cancelling
// any previously pending expiry. fn runs on a timer goroutine; it is never
// invoked after Cancel returns, barring a call already past the gate.
func (e *Expiry) Schedule(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	gen := e.generation

	e.pending = time.AfterFunc(e.dwell, func() {
		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			return
		}
		e.pending = nil
		e.mu.Unlock()

		fn()
	})
}

// Cancel drops any pending expiry. A late timer callback that already fired
// is gated out by generation, so it cannot mutate a discarded session.
// Safe to call at any time, idempotently.
func (e *Expiry) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
}

func (e *Expiry) cancelLocked() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.generation++
}
