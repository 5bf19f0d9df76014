package sched

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/dotmatrix/clockd/localtime"
	"github.com/dotmatrix/clockd/tzrule"
)

// ZoneProvider hands out the currently configured timezone. Implementations
// must return a zone that is safe to use from the scheduler's goroutine until
// the next tick.
type ZoneProvider interface {
	Zone() *tzrule.Zone
}

// Scheduler wakes close to each wall-clock :00 and :30 second boundary,
// re-derives local time and invokes the tick handler. The wake-up time is
// recomputed from the current clock on every iteration, so the loop does not
// drift regardless of how long the previous handler invocation took.
type Scheduler struct {
	clock clockwork.Clock
	tk    *Timekeeper
}

// NewScheduler returns a scheduler over the given clock; nil means the real
// wall clock.
func NewScheduler(clock clockwork.Clock, tk *Timekeeper) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, tk: tk}
}

// NextTickDelay computes how long to sleep until just after the next
// half-minute boundary, given the current local second and the sub-second
// remainder of the current instant. The margin of 1050ms past the boundary
// makes sure the switchover has happened when the loop wakes.
func NextTickDelay(second int, frac time.Duration) time.Duration {
	target := 29
	if second >= 30 {
		target = 59
	}
	return 1050*time.Millisecond - frac + time.Duration(target-second)*time.Second
}

// Run executes the tick loop until the context is canceled. The handler is
// called once per tick with the freshly derived local time.
func (s *Scheduler) Run(ctx context.Context, zp ZoneProvider, onTick func(localtime.Time)) error {
	lt := localtime.FromUnix(zp.Zone(), s.tk.Unix())
	log.Info().Stringer("local", lt).Msg("sched: tick loop started")

	for {
		frac := time.Duration(s.tk.Now().Nanosecond())
		select {
		case <-ctx.Done():
			log.Info().Msg("sched: tick loop stopped")
			return ctx.Err()
		case <-s.clock.After(NextTickDelay(lt.Second, frac)):
		}

		lt = localtime.FromUnix(zp.Zone(), s.tk.Unix())
		onTick(lt)
	}
}
