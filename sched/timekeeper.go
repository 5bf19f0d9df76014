package sched

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timekeeper is the appliance's notion of current UTC time: a settable
// offset over a monotonic clock. It stands in for the kernel clock of the
// original firmware and can be corrected from the network time source or the
// battery-backed hardware clock at any moment.
type Timekeeper struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	offset time.Duration
}

// NewTimekeeper returns a Timekeeper over the given clock. A nil clock means
// the real wall clock.
func NewTimekeeper(clock clockwork.Clock) *Timekeeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timekeeper{clock: clock}
}

// Now returns the current UTC time.
func (t *Timekeeper) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock.Now().Add(t.offset).UTC()
}

// Unix returns the current UTC instant in seconds.
func (t *Timekeeper) Unix() int64 {
	return t.Now().Unix()
}

// Set slews the kept time so that the current instant equals sec.
func (t *Timekeeper) Set(sec int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = time.Unix(sec, 0).Sub(t.clock.Now())
}
