// Package localtime converts wide UTC instants to broken-down local calendar
// time and back, applying the offsets and daylight saving rules of a
// tzrule.Zone. Field conventions follow the classic broken-down time layout:
// Month and YearDay are zero-based, Weekday starts on Sunday.
package localtime

import (
	"fmt"

	"github.com/dotmatrix/clockd/internal/calendar"
	"github.com/dotmatrix/clockd/tzrule"
)

// DST is the tri-state daylight saving flag of a local time.
type DST int8

const (
	// Off means daylight saving time is definitely not in effect.
	Off DST = iota
	// On means daylight saving time is definitely in effect.
	On
	// Unknown means the transition instants for the year could not be
	// computed; only the standard offset was applied.
	Unknown
)

func (d DST) String() string {
	switch d {
	case Off:
		return "off"
	case On:
		return "on"
	case Unknown:
		return "unknown"
	}
	return fmt.Sprintf("DST(%d)", int8(d))
}

// Time is a broken-down local calendar time.
type Time struct {
	Year    int
	Month   int // 0-11, January = 0
	Day     int // 1-31
	Hour    int
	Minute  int
	Second  int
	Weekday int // 0-6, Sunday = 0
	YearDay int // 0-based
	DST     DST
}

// String formats the time as an ISO-like local timestamp, for logs.
func (t Time) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d dst=%s",
		t.Year, t.Month+1, t.Day, t.Hour, t.Minute, t.Second, t.DST)
}

// FromUnix converts a UTC instant to local time in the given zone. Apart from
// the zone's one-year transition cache the result is a pure function of
// (sec, zone); the cache is recomputed transparently when the derived year
// differs from the cached one.
func FromUnix(z *tzrule.Zone, sec int64) Time {
	d := calendar.FromUnix(sec)
	t := Time{
		Year:    d.Year,
		Month:   d.Month,
		Day:     d.Day,
		Hour:    d.Hour,
		Minute:  d.Minute,
		Second:  d.Second,
		Weekday: d.Weekday,
		YearDay: d.YearDay,
	}

	offset, dst, known := z.OffsetAt(sec, d.Year)
	switch {
	case !known:
		t.DST = Unknown
	case dst:
		t.DST = On
	}

	// Subtract the offset component-wise, then propagate borrows and carries
	// through the calendar fields. The offset magnitude is below 24 hours, so
	// a single adjustment step per field suffices.
	hours := int(offset / calendar.SecondsPerHour)
	rem := int(offset % calendar.SecondsPerHour)
	mins := rem / calendar.SecondsPerMinute
	secs := rem % calendar.SecondsPerMinute

	t.Second -= secs
	t.Minute -= mins
	t.Hour -= hours

	if t.Second >= calendar.SecondsPerMinute {
		t.Minute++
		t.Second -= calendar.SecondsPerMinute
	} else if t.Second < 0 {
		t.Minute--
		t.Second += calendar.SecondsPerMinute
	}
	if t.Minute >= 60 {
		t.Hour++
		t.Minute -= 60
	} else if t.Minute < 0 {
		t.Hour--
		t.Minute += 60
	}

	lengths := calendar.MonthLengths(t.Year)
	if t.Hour >= 24 {
		t.Hour -= 24
		t.YearDay++
		t.Weekday++
		if t.Weekday > 6 {
			t.Weekday = 0
		}
		t.Day++
		if t.Day > lengths[t.Month] {
			t.Day -= lengths[t.Month]
			t.Month++
			if t.Month == 12 {
				t.Month = 0
				t.Year++
				t.YearDay = 0
			}
		}
	} else if t.Hour < 0 {
		t.Hour += 24
		t.YearDay--
		t.Weekday--
		if t.Weekday < 0 {
			t.Weekday = 6
		}
		t.Day--
		if t.Day == 0 {
			t.Month--
			if t.Month < 0 {
				t.Month = 11
				t.Year--
				t.YearDay = 364
				if calendar.IsLeap(t.Year) {
					t.YearDay = 365
				}
				lengths = calendar.MonthLengths(t.Year)
			}
			t.Day = lengths[t.Month]
		}
	}

	return t
}

// ToUnix re-derives the UTC instant from broken-down local fields and the
// offset (seconds west of UTC) that was applied to produce them. It is the
// inverse of FromUnix for the offset the conversion chose.
func ToUnix(t Time, offset int64) int64 {
	return calendar.ToUnix(t.Year, t.Month+1, t.Day, t.Hour, t.Minute, t.Second) + offset
}
