// Package alarm implements the schedule table of the clock appliance and the
// rule engine that decides, once per tick, whether the primary alarm fires or
// an ancillary sound plays.
package alarm

import (
	"errors"
	"fmt"
)

// Slots is the fixed size of the schedule table.
const Slots = 20

// Entry is one row of the schedule table. A zero value in Month, Day or
// Weekday acts as a wildcard.
type Entry struct {
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Month   int    `json:"month"`   // 1-12, 0 = any
	Day     int    `json:"day"`     // day of month, 0 = any
	Weekday int    `json:"weekday"` // 1-7 Sunday-Saturday, 0 = any
	IsAlarm bool   `json:"is_alarm"`
	Sound   string `json:"sound"`
}

// Schedule is the fixed-size ordered table of schedule entries. Slot 0 is
// always the primary alarm; the engine relies on this structural invariant
// and never selects slot 0 as an ancillary sound.
type Schedule [Slots]Entry

// ErrScheduleLen is returned when an externally supplied table does not have
// exactly Slots entries. The entire update is rejected and the prior table
// retained by the caller.
var ErrScheduleLen = errors.New("alarm: schedule must have exactly 20 entries")

// FromSlice validates an externally supplied table and copies it into a
// Schedule.
func FromSlice(entries []Entry) (Schedule, error) {
	var s Schedule
	if len(entries) != Slots {
		return s, fmt.Errorf("%w, got %d", ErrScheduleLen, len(entries))
	}
	copy(s[:], entries)
	return s, nil
}

// Default returns the factory schedule: a 10:15 primary alarm and empty
// remaining slots.
func Default() Schedule {
	var s Schedule
	s[0] = Entry{Hour: 10, Minute: 15, IsAlarm: true, Sound: "bird1"}
	return s
}

// Pending is the next time the primary alarm is expected to ring. It can
// differ from slot 0's raw schedule after a snooze adjustment, which is why
// it is tracked separately. It is mutated only by the rule engine and the
// snooze operation.
type Pending struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Sound  string `json:"sound"`
}

// NoPending returns a pending alarm that can never match a wall-clock time,
// used to cancel an already scheduled ring.
func NoPending() Pending {
	return Pending{Hour: -1, Minute: -1}
}

// Snooze delays the pending alarm by the given number of minutes, wrapping
// the hour within 0-23.
func (p Pending) Snooze(minutes int) Pending {
	p.Minute += minutes
	if p.Minute > 59 {
		p.Minute -= 60
		p.Hour++
		if p.Hour > 23 {
			p.Hour = 0
		}
	}
	return p
}

// AdjustTime moves an entry's time by delta minutes, wrapping around
// midnight in both directions.
func AdjustTime(e Entry, delta int) Entry {
	total := e.Hour*60 + e.Minute + delta
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}
	e.Hour = total / 60
	e.Minute = total % 60
	return e
}
