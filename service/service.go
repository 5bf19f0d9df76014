// Package service runs the clock: it owns the mutable appliance state, feeds
// scheduler ticks through the alarm engine and drives sound playback and
// persistence.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/dotmatrix/clockd/alarm"
	"github.com/dotmatrix/clockd/config"
	"github.com/dotmatrix/clockd/localtime"
	"github.com/dotmatrix/clockd/sched"
	"github.com/dotmatrix/clockd/store"
	"github.com/dotmatrix/clockd/tzrule"
)

// Player plays alarm and chime sounds. Fired alarms loop until Stop, other
// sounds play once.
type Player interface {
	Play(sound string, loop bool) error
	Stop() error
}

// persistDelay is the number of quiet ticks to wait after a state change
// before writing it out. Grouping rapid changes into one write keeps wear on
// the backing flash down.
const persistDelay = 10

// Service wires the timekeeper, arbiter, scheduler, alarm engine, player and
// store together.
//
// The mu mutex protects all mutable fields. Playback and persistence happen
// outside the lock.
type Service struct {
	tk     *sched.Timekeeper
	arb    *sched.Arbiter
	sc     *sched.Scheduler
	hw     sched.HardwareClock
	st     *store.Store
	player Player

	mu        sync.RWMutex
	zone      *tzrule.Zone
	schedule  alarm.Schedule
	pending   alarm.Pending
	armed     bool
	ringing   bool
	saveAfter int

	snoozeMinutes int

	ticks chan localtime.Time
}

// New builds the service from its parts. The schedule and alarm state are
// restored from the store when present, otherwise the factory schedule is
// installed and the alarm armed per the config default. The system clock is
// seeded from the hardware clock.
func New(
	cfg config.Values,
	clock clockwork.Clock,
	st *store.Store,
	hw sched.HardwareClock,
	src sched.SyncSource,
	player Player,
) (*Service, error) {
	zone, err := tzrule.Parse(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timezone %q: %w", cfg.Timezone, err)
	}

	tk := sched.NewTimekeeper(clock)
	s := &Service{
		tk:            tk,
		arb:           sched.NewArbiter(tk, hw, src, cfg.NoSyncThreshold),
		sc:            sched.NewScheduler(clock, tk),
		hw:            hw,
		st:            st,
		player:        player,
		zone:          &zone,
		schedule:      alarm.Default(),
		pending:       alarm.NoPending(),
		armed:         cfg.AlarmDefaultOn,
		snoozeMinutes: cfg.SnoozeMinutes,
		ticks:         make(chan localtime.Time, 8),
	}

	stored, err := st.Schedule()
	switch {
	case err == nil:
		s.schedule = stored
	case errors.Is(err, store.ErrNotFound):
		log.Info().Msg("no stored schedule, using factory defaults")
	default:
		return nil, err
	}

	state, err := st.AlarmState()
	switch {
	case err == nil:
		s.pending = state.Pending
		s.armed = state.Armed
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, err
	}

	s.arb.Seed()
	return s, nil
}

// Run blocks ticking the clock until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.sc.Run(ctx, s, s.onTick)
}

// Zone implements sched.ZoneProvider.
func (s *Service) Zone() *tzrule.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zone
}

// Now returns the current local time.
func (s *Service) Now() localtime.Time {
	return localtime.FromUnix(s.Zone(), s.tk.Unix())
}

// Ticks returns a channel carrying each tick's local time, for display
// consumers. Ticks are dropped when the consumer lags.
func (s *Service) Ticks() <-chan localtime.Time {
	return s.ticks
}

func (s *Service) onTick(now localtime.Time) {
	s.arb.Tick(now.Minute)

	s.mu.Lock()
	decision, pending := alarm.Evaluate(&s.schedule, now, s.pending, s.armed)
	s.pending = pending

	persist := false
	if s.saveAfter > 0 {
		s.saveAfter--
		persist = s.saveAfter == 0
	}
	if decision.Outcome == alarm.Fired {
		s.ringing = true
	}
	s.mu.Unlock()

	switch decision.Outcome {
	case alarm.Fired:
		log.Info().Msgf("alarm fired at %02d:%02d sound=%s", now.Hour, now.Minute, decision.Sound)
		if err := s.player.Play(decision.Sound, true); err != nil {
			log.Error().Err(err).Msg("failed to play alarm sound")
		}
	case alarm.Ancillary:
		if err := s.player.Play(decision.Sound, false); err != nil {
			log.Error().Err(err).Msg("failed to play sound")
		}
	case alarm.None:
	}

	if persist {
		s.persist()
	}

	select {
	case s.ticks <- now:
	default:
	}
}

func (s *Service) persist() {
	s.mu.RLock()
	schedule := s.schedule
	state := store.AlarmState{Pending: s.pending, Armed: s.armed}
	s.mu.RUnlock()

	if err := s.st.SaveSchedule(&schedule); err != nil {
		log.Error().Err(err).Msg("failed to save schedule")
		return
	}
	if err := s.st.SaveAlarmState(state); err != nil {
		log.Error().Err(err).Msg("failed to save alarm state")
		return
	}
	log.Debug().Msg("saved schedule and alarm state")
}

// markDirty schedules a persist a few quiet ticks from now. Callers hold mu.
func (s *Service) markDirty() {
	s.saveAfter = persistDelay
}

// SetTimezone installs a new timezone. On a parse error the previous zone
// stays in effect.
func (s *Service) SetTimezone(desc string) error {
	zone, err := tzrule.Parse(desc)
	if err != nil {
		return fmt.Errorf("failed to parse timezone %q: %w", desc, err)
	}
	s.mu.Lock()
	s.zone = &zone
	s.mu.Unlock()
	log.Info().Msgf("timezone set to %s", desc)
	return nil
}

// SetSchedule replaces the whole schedule table.
func (s *Service) SetSchedule(entries []alarm.Entry) error {
	table, err := alarm.FromSlice(entries)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.schedule = table
	s.markDirty()
	s.mu.Unlock()
	return nil
}

// Schedule returns a copy of the current schedule table.
func (s *Service) Schedule() alarm.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// SetUTC sets the current time in UTC seconds, for manual adjustment when no
// network source is available. The hardware clock is updated as well.
func (s *Service) SetUTC(sec int64) {
	s.tk.Set(sec)
	if err := s.hw.Write(sec); err != nil {
		log.Error().Err(err).Msg("failed to write hardware clock")
	}
}

// AdjustAlarm moves the primary alarm time by delta minutes, wrapping around
// midnight.
func (s *Service) AdjustAlarm(delta int) {
	s.mu.Lock()
	s.schedule[0] = alarm.AdjustTime(s.schedule[0], delta)
	s.markDirty()
	s.mu.Unlock()
}

// SetArmed arms or disarms the alarm. Disarming clears any pending alarm,
// snoozed ones included, and stops a ringing one.
func (s *Service) SetArmed(armed bool) {
	s.mu.Lock()
	s.armed = armed
	stop := !armed && s.ringing
	if !armed {
		s.ringing = false
		s.pending = alarm.NoPending()
	}
	s.markDirty()
	s.mu.Unlock()

	if stop {
		if err := s.player.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop playback")
		}
	}
}

// Armed reports whether the alarm is armed.
func (s *Service) Armed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.armed
}

// Snooze silences a ringing alarm and reschedules it a few minutes out. It
// does nothing when no alarm is ringing.
func (s *Service) Snooze() {
	s.mu.Lock()
	if !s.ringing {
		s.mu.Unlock()
		return
	}
	s.ringing = false
	s.pending = s.pending.Snooze(s.snoozeMinutes)
	pending := s.pending
	s.markDirty()
	s.mu.Unlock()

	if err := s.player.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop playback")
	}
	log.Info().Msgf("alarm snoozed until %02d:%02d", pending.Hour, pending.Minute)
}

// StopAlarm silences a ringing alarm without touching the armed state or the
// pending alarm time.
func (s *Service) StopAlarm() {
	s.mu.Lock()
	ringing := s.ringing
	s.ringing = false
	s.mu.Unlock()

	if !ringing {
		return
	}
	if err := s.player.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop playback")
	}
}

// Ringing reports whether an alarm sound is currently looping.
func (s *Service) Ringing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ringing
}
