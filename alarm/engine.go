package alarm

import (
	"github.com/dotmatrix/clockd/localtime"
)

// Outcome classifies the playback decision of one evaluation.
type Outcome int

const (
	// None means nothing is to be played.
	None Outcome = iota
	// Fired means the primary alarm rang; playback loops until stopped.
	Fired
	// Ancillary means a non-alarm entry matched; its sound plays once.
	Ancillary
)

// Decision is the single playback decision of one tick.
type Decision struct {
	Outcome Outcome
	Sound   string
}

// Evaluate runs the schedule table against the current local time and
// returns the playback decision together with the updated pending alarm. It
// is a pure function; the caller stores the returned pending state.
//
// Ticks occur near :00 and :30, but matching is minute-granular, so only the
// tick with the current second below 10 evaluates the table.
//
// Evaluation order over the table:
//
//  1. If slot 0 matches the current hour and minute, the pending alarm is
//     rescheduled to now with slot 0's sound.
//  2. A non-alarm entry matching the current time is selected as the
//     ancillary sound, preferring a weekday match over a month/day match
//     over an unconstrained entry. Unconstrained entries anchored at 00:00
//     never fire; that guards against an unconfigured midnight default.
//     Ancillary selection is skipped entirely on ticks where slot 0 matched.
//  3. Independently of the time match, any alarm-flagged entry whose weekday
//     or month/day matches today overrides the pending alarm's sound. This
//     substitutes the alarm sound for specific days without duplicating the
//     alarm time.
//
// Finally, if the pending alarm matches the current time and the alarm is
// armed, it fires with a looping sound; otherwise a selected ancillary sound
// plays once.
func Evaluate(s *Schedule, now localtime.Time, pending Pending, armed bool) (Decision, Pending) {
	if now.Second > 9 {
		return Decision{}, pending
	}

	const (
		prioNone = iota
		prioFallback
		prioDate
		prioWeekday
	)
	primaryFound := false
	soundToPlay := -1
	soundPrio := prioNone

	for x := range s {
		e := &s[x]
		if now.Hour == e.Hour && now.Minute == e.Minute {
			if x == 0 {
				primaryFound = true
				pending = Pending{Hour: now.Hour, Minute: now.Minute, Sound: e.Sound}
			} else if !primaryFound && !e.IsAlarm {
				switch {
				case now.Weekday+1 == e.Weekday:
					if soundPrio < prioWeekday {
						soundToPlay, soundPrio = x, prioWeekday
					}
				case e.Month == now.Month+1 && e.Day == now.Day:
					if soundPrio < prioDate {
						soundToPlay, soundPrio = x, prioDate
					}
				case e.Weekday == 0 && e.Month == 0:
					// Time-only entry valid on all days. A sound anchored at
					// exactly 00:00 is never played this way.
					if soundPrio < prioFallback && !(e.Hour == 0 && e.Minute == 0) {
						soundToPlay, soundPrio = x, prioFallback
					}
				}
			}
		}

		// Sound override for alarms bound to a weekday or date, like weekend
		// mornings or holidays. Slot 0 never carries day constraints that
		// can match, so including it here is harmless.
		if primaryFound && e.IsAlarm {
			if now.Weekday+1 == e.Weekday {
				pending.Sound = e.Sound
			} else if e.Month == now.Month+1 && e.Day == now.Day {
				pending.Sound = e.Sound
			}
		}
	}

	if now.Hour == pending.Hour && now.Minute == pending.Minute && armed {
		return Decision{Outcome: Fired, Sound: pending.Sound}, pending
	}
	// Slot 0 is reserved for the primary alarm, so a selected ancillary
	// index is always positive.
	if soundToPlay > 0 {
		return Decision{Outcome: Ancillary, Sound: s[soundToPlay].Sound}, pending
	}
	return Decision{}, pending
}
