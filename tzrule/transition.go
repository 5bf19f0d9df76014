package tzrule

import (
	"errors"

	"github.com/dotmatrix/clockd/internal/calendar"
)

// ErrYearBeforeEpoch is returned when transition instants are requested for a
// year before 1970. Callers fall back to the standard offset and report the
// daylight saving state as unknown.
var ErrYearBeforeEpoch = errors.New("tzrule: year before epoch")

// Transitions returns the UTC instants at which the zone switches to
// daylight saving time and back for the given year, recomputing the cached
// values if the year differs from the cached one. The computation is
// idempotent; the cache is an optimization, not a correctness requirement.
func (z *Zone) Transitions(year int) (toDST, toStd int64, err error) {
	if year != z.year {
		if err := z.compute(year); err != nil {
			return 0, 0, err
		}
	}
	return z.Rules[0].Change, z.Rules[1].Change, nil
}

// compute fills in the Change instant of both rules for the given year and
// derives the hemisphere flag.
func (z *Zone) compute(year int) error {
	if year < calendar.EpochYear {
		return ErrYearBeforeEpoch
	}

	yearDays := calendar.DaysFromEpoch(year)
	for i := range z.Rules {
		r := &z.Rules[i]
		var days int64
		switch r.Form {
		case JulianLeap:
			// Julian day n (1 <= n <= 365), leap day skipped: convert to a
			// zero-based day of year, moving rules on or after March 1st one
			// day later in leap years.
			days = yearDays + int64(r.Day) - 1
			if calendar.IsLeap(year) && r.Day >= 60 {
				days++
			}
		case DayOfYear:
			days = yearDays + int64(r.Day)
		case MonthWeekDay:
			lengths := calendar.MonthLengths(year)
			days = yearDays
			for m := 1; m < r.Month; m++ {
				days += int64(lengths[m-1])
			}
			// Weekday of the first of the month, then the forward distance to
			// the rule's weekday.
			firstWeekday := int((calendar.EpochWeekday + days) % calendar.DaysPerWeek)
			diff := r.Weekday - firstWeekday
			if diff < 0 {
				diff += calendar.DaysPerWeek
			}
			day := (r.Week-1)*calendar.DaysPerWeek + diff
			// Week 5 means the last occurrence: back off while the candidate
			// falls outside the month.
			for day >= lengths[r.Month-1] {
				day -= calendar.DaysPerWeek
			}
			days += int64(day)
		}
		// The rule's own offset is folded in so Change is expressed in UTC.
		r.Change = days*calendar.SecondsPerDay + int64(r.TimeOfDay) + r.Offset
	}

	z.year = year
	z.northern = z.Rules[0].Change < z.Rules[1].Change
	return nil
}

// OffsetAt returns the offset in seconds west of UTC at the given instant,
// along with whether daylight saving time is in effect. The third result is
// false when the year's transitions cannot be computed; in that case the
// standard offset is returned and the daylight saving state is unknown.
func (z *Zone) OffsetAt(sec int64, year int) (offset int64, dst, known bool) {
	if !z.daylight {
		return z.Rules[0].Offset, false, true
	}
	toDST, toStd, err := z.Transitions(year)
	if err != nil {
		return z.Rules[0].Offset, false, false
	}
	if z.northern {
		dst = sec >= toDST && sec < toStd
	} else {
		// Southern hemisphere: the daylight interval wraps across the year
		// boundary.
		dst = sec >= toDST || sec < toStd
	}
	if dst {
		return z.Rules[1].Offset, true, true
	}
	return z.Rules[0].Offset, false, true
}
