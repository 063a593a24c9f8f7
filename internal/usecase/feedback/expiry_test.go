package feedback

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_FiresAfterDwell(t *testing.T) {
	expiry := NewExpiryWithDwell(20 * time.Millisecond)
	defer expiry.Cancel()

	var fired atomic.Int32
	expiry.Schedule(func() { fired.Add(1) })

	assert.Equal(t, int32(0), fired.Load(), "must not fire before the dwell")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestSchedule_ReplacesPending(t *testing.T) {
	expiry := NewExpiryWithDwell(30 * time.Millisecond)
	defer expiry.Cancel()

	var first, second atomic.Int32
	expiry.Schedule(func() { first.Add(1) })
	expiry.Schedule(func() { second.Add(1) })

	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(0), first.Load(), "superseded expiry must never fire")
	assert.Equal(t, int32(1), second.Load())
}

func TestCancel_DropsPending(t *testing.T) {
	expiry := NewExpiryWithDwell(20 * time.Millisecond)

	var fired atomic.Int32
	expiry.Schedule(func() { fired.Add(1) })
	expiry.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestCancel_Idempotent(t *testing.T) {
	expiry := NewExpiryWithDwell(20 * time.Millisecond)

	assert.NotPanics(t, func() {
		expiry.Cancel()
		expiry.Cancel()
	})
}
