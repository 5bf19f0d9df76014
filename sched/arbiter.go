// Package sched contains the synchronized tick scheduler and the arbitration
// between the network time source and the battery-backed hardware clock.
package sched

import (
	"github.com/rs/zerolog/log"
)

// SyncStatus is the state of the external network time source.
type SyncStatus int

const (
	// SyncIdle means no synchronization has happened recently.
	SyncIdle SyncStatus = iota
	// SyncInProgress means a synchronization is currently running.
	SyncInProgress
	// SyncCompleted means a synchronization finished since the last poll.
	SyncCompleted
)

// HardwareClock is the battery-backed realtime clock. Both directions carry
// UTC seconds. Calls may fail (bus busy, timeout); failures leave the
// arbiter's state untouched.
type HardwareClock interface {
	Read() (int64, error)
	Write(sec int64) error
}

// SyncSource reports the state of the network time synchronization.
type SyncSource interface {
	Status() SyncStatus
}

// DefaultNoSyncThreshold is the number of minutes without a completed network
// sync after which the hardware clock takes over as the time source.
const DefaultNoSyncThreshold = 121

// Arbiter decides, once per tick, whether the hardware clock should be
// written from freshly synced time or read to correct a drifting system
// clock. It maintains an approximate count of minutes since the last
// completed network sync.
type Arbiter struct {
	tk        *Timekeeper
	hw        HardwareClock
	src       SyncSource
	threshold int

	lastMinute int
	minutes    int
}

// NewArbiter returns an arbiter with the given no-sync threshold in minutes;
// a value <= 0 selects DefaultNoSyncThreshold.
func NewArbiter(tk *Timekeeper, hw HardwareClock, src SyncSource, threshold int) *Arbiter {
	if threshold <= 0 {
		threshold = DefaultNoSyncThreshold
	}
	return &Arbiter{tk: tk, hw: hw, src: src, threshold: threshold, lastMinute: -1}
}

// Seed initializes the kept time from the hardware clock. It is called once
// before the tick loop starts.
func (a *Arbiter) Seed() {
	sec, err := a.hw.Read()
	if err != nil {
		log.Error().Err(err).Msg("arbiter: seeding from hardware clock failed")
		return
	}
	a.tk.Set(sec)
	log.Info().Int64("utc", sec).Msg("arbiter: time seeded from hardware clock")
}

// Minutes returns the approximate number of minutes since the last completed
// sync. It never goes negative.
func (a *Arbiter) Minutes() int { return a.minutes }

// Tick advances the arbiter by one scheduler tick. The counter increments
// only when the minute value changed since the previous tick, so it
// approximates elapsed minutes.
//
// On the tick that advances the counter to 1, i.e. one minute after a
// completed sync, the fresh time is pushed to the hardware clock. The
// counter passes through 1 once per reset cycle, so each sync yields a
// single write. When the counter reaches a nonzero multiple of the
// threshold, the hardware clock is read back to correct drift; that read is
// a stopgap, not a sync, and does not reset the counter.
func (a *Arbiter) Tick(minute int) {
	advanced := false
	if minute != a.lastMinute {
		a.lastMinute = minute
		a.minutes++
		advanced = true
	}

	switch a.src.Status() {
	case SyncCompleted:
		log.Info().Msg("arbiter: network sync complete")
		a.minutes = 0
	case SyncInProgress:
		log.Debug().Msg("arbiter: network sync in progress")
	}

	if advanced && a.minutes == 1 {
		if err := a.hw.Write(a.tk.Unix()); err != nil {
			log.Error().Err(err).Msg("arbiter: pushing time to hardware clock failed")
		} else {
			log.Info().Msg("arbiter: time pushed to hardware clock")
		}
	}

	if a.minutes > 0 && a.minutes%a.threshold == 0 {
		sec, err := a.hw.Read()
		if err != nil {
			log.Error().Err(err).Msg("arbiter: reading hardware clock failed")
			return
		}
		a.tk.Set(sec)
		log.Info().Int64("utc", sec).Msg("arbiter: no recent network sync, hardware clock sets time")
	}
}
