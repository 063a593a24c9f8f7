package disclosure

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultWindow is how long an issued passcode stays visible
	DefaultWindow = 5 * time.Second
	// DefaultTick is the interval of the progress decrement loop
	DefaultTick = 50 * time.Millisecond
)

// State is a point-in-time snapshot of the disclosure
type State struct {
	Code     string
	Progress int // 0-100, monotonically decreasing
	Visible  bool
}

// Timer governs the bounded-time, decaying-progress presentation of a
// server-issued passcode. Two cooperating scheduled tasks are owned here:
// a tick loop decrementing progress, and an independent hard-expiry action
// that bounds the display duration even if tick scheduling is delayed.
// At most one of each is active at a time.
type Timer struct {
	window time.Duration
	tick   time.Duration
	log    zerolog.Logger

	mu         sync.Mutex
	generation uint64
	code       string
	progress   int
	visible    bool
	tickerDone chan struct{}
	expiry     *time.Timer
}

// NewTimer creates a disclosure timer with the default 5s window and 50ms tick
func NewTimer(log zerolog.Logger) *Timer {
	return NewTimerWithWindow(DefaultWindow, DefaultTick, log)
}

// NewTimerWithWindow creates a disclosure timer with a custom window and tick
func NewTimerWithWindow(window, tick time.Duration, log zerolog.Logger) *Timer {
	return &Timer{
		window: window,
		tick:   tick,
		log:    log.With().Str("component", "disclosure_timer").Logger(),
	}
}

// Start discloses a passcode for the full window. A Start while a prior
// disclosure is active supersedes it: the old tasks are cancelled first and
// the window resets to full.
func (t *Timer) Start(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked()

	t.generation++
	gen := t.generation
	t.code = code
	t.progress = 100
	t.visible = true

	done := make(chan struct{})
	t.tickerDone = done
	go t.runTicks(gen, done)

	t.expiry = time.AfterFunc(t.window, func() {
		t.expire(gen)
	})

	t.log.Debug().Dur("window", t.window).Msg("Disclosure started")
}

// Cancel immediately halts the tick loop and the hard-expiry action, clears
// the code and hides the disclosure. Safe to call at any time, idempotently.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Snapshot returns the current disclosure state
func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Code: t.code, Progress: t.progress, Visible: t.visible}
}

// runTicks decrements progress by 1 per tick until it reaches zero, the
// disclosure is superseded, or the done channel closes.
func (t *Timer) runTicks(gen uint64, done chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.generation != gen {
				t.mu.Unlock()
				return
			}
			if t.progress > 0 {
				t.progress--
			}
			if t.progress == 0 {
				// Visible only while progress > 0; whichever of the tick
				// loop or the hard expiry gets here first wins.
				t.expireLocked(gen)
				t.mu.Unlock()
				return
			}
			t.mu.Unlock()
		}
	}
}

// expire is the hard-expiry action scheduled at Start
func (t *Timer) expire(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expireLocked(gen)
}

// expireLocked clears the disclosure if gen is still the active generation.
// Callers must hold t.mu.
func (t *Timer) expireLocked(gen uint64) {
	if t.generation != gen {
		return
	}
	t.cancelLocked()
	t.log.Debug().Msg("Disclosure expired")
}

// cancelLocked stops both scheduled tasks and clears all disclosure state.
// Callers must hold t.mu.
func (t *Timer) cancelLocked() {
	if t.tickerDone != nil {
		close(t.tickerDone)
		t.tickerDone = nil
	}
	if t.expiry != nil {
		t.expiry.Stop()
		t.expiry = nil
	}
	t.generation++ // invalidate callbacks already in flight
	t.code = ""
	t.progress = 0
	t.visible = false
}
