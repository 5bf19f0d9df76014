// Package tzrule parses POSIX-style timezone descriptors such as
// "CET-1CEST-2,M3.5.0/2,M10.5.0/3" and computes the two UTC instants per year
// at which the offset changes. It implements the subset of the TZ environment
// variable syntax that describes a standard offset, an optional daylight
// saving offset and an optional pair of yearly transition rules.
package tzrule

import (
	"fmt"
	"strings"

	"github.com/dotmatrix/clockd/internal/calendar"
)

// RuleForm describes how a transition rule locates its day within a year.
type RuleForm int

const (
	// JulianLeap is the "Jn" form: Julian day n (1 <= n <= 365), where the
	// leap day is skipped so day 60 is always March 1st.
	JulianLeap RuleForm = iota
	// DayOfYear is the bare "n" form: zero-based day of the year with no
	// leap adjustment.
	DayOfYear
	// MonthWeekDay is the "Mm.w.d" form: day d (0=Sunday) of week w (1-5,
	// 5 meaning the last occurrence) of month m (1-12).
	MonthWeekDay
)

// DefaultTransitionTime is the time-of-day at which a transition happens when
// the rule carries no explicit "/time" suffix: 02:00:00 local.
const DefaultTransitionTime = 2 * calendar.SecondsPerHour

// Rule is one yearly transition rule plus the offset that is in effect until
// the rule fires. Offset follows the POSIX sign convention: seconds west of
// UTC, so CET (UTC+1) has offset -3600.
type Rule struct {
	Form    RuleForm
	Day     int // JulianLeap/DayOfYear day number
	Month   int // MonthWeekDay month, 1-12
	Week    int // MonthWeekDay week, 1-5, 5 = last
	Weekday int // MonthWeekDay weekday, 0-6, Sunday = 0

	TimeOfDay int   // seconds after local midnight at which the rule fires
	Offset    int64 // seconds west of UTC in effect until this rule fires

	// Change is the UTC instant of the transition, valid only for the year
	// most recently passed to Zone.Transitions.
	Change int64
}

// Zone is a parsed timezone descriptor together with per-year cached
// transition instants. The zero value is UTC without daylight saving.
//
// A Zone is not safe for concurrent use; callers own it and pass it
// explicitly, recomputing the cached year through Transitions as needed.
type Zone struct {
	StdName string
	DstName string

	// Rules[0] switches to daylight saving time, Rules[1] back to standard.
	Rules [2]Rule

	daylight bool // a daylight name was given and the offsets differ
	year     int  // year the Change fields were computed for, 0 = none
	northern bool
}

// ParseError reports a malformed timezone descriptor. The caller is expected
// to keep its previously active Zone when Parse fails.
type ParseError struct {
	Desc string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse timezone %q: %v", e.Desc, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UTC returns the zone used when no descriptor is configured.
func UTC() Zone {
	return Zone{StdName: "GMT", DstName: "GMT"}
}

// Parse parses a POSIX-style timezone descriptor:
//
//	std offset [dst [offset] [,rule[/time],rule[/time]]]
//
// An empty descriptor yields UTC. If a daylight name is present without an
// explicit offset, the daylight offset defaults to one hour east of standard.
// If the rule pair is missing, the post-2007 US rules (M3.2.0, M11.1.0) are
// used. Parse never returns a partially filled Zone: on error the caller's
// previous configuration remains valid.
func Parse(desc string) (Zone, error) {
	if desc == "" {
		return UTC(), nil
	}

	fail := func(err error) (Zone, error) {
		return Zone{}, &ParseError{Desc: desc, Err: err}
	}

	// Ignore the implementation-specific format specifier.
	s := strings.TrimPrefix(desc, ":")

	var z Zone
	name, s, err := parseName(s)
	if err != nil {
		return fail(fmt.Errorf("standard name: %w", err))
	}
	z.StdName = name

	stdOffset, s, err := parseOffset(s)
	if err != nil {
		return fail(fmt.Errorf("standard offset: %w", err))
	}
	z.Rules[0].Offset = stdOffset

	name, s, err = parseName(s)
	if err != nil {
		// No daylight saving name: the daylight offset equals the standard
		// offset and no rule is ever evaluated.
		z.DstName = z.StdName
		z.Rules[1].Offset = stdOffset
		return z, nil
	}
	z.DstName = name

	if dstOffset, rest, err := parseOffset(s); err == nil {
		z.Rules[1].Offset = dstOffset
		s = rest
	} else {
		z.Rules[1].Offset = stdOffset - calendar.SecondsPerHour
	}
	z.daylight = z.Rules[0].Offset != z.Rules[1].Offset

	for i := range z.Rules {
		s = strings.TrimPrefix(s, ",")
		if s, err = parseRule(&z.Rules[i], i, s); err != nil {
			return fail(fmt.Errorf("rule %d: %w", i, err))
		}
	}
	if s != "" {
		return fail(fmt.Errorf("trailing garbage %q", s))
	}
	return z, nil
}

// HasDST reports whether daylight saving time is ever in effect.
func (z *Zone) HasDST() bool { return z.daylight }

// StdOffset returns the standard offset in seconds west of UTC.
func (z *Zone) StdOffset() int64 { return z.Rules[0].Offset }

// DstOffset returns the daylight saving offset in seconds west of UTC.
func (z *Zone) DstOffset() int64 { return z.Rules[1].Offset }

// Northern reports whether daylight saving lies between the two transitions
// (northern hemisphere) rather than wrapping across the year boundary. Only
// meaningful after a successful Transitions call.
func (z *Zone) Northern() bool { return z.northern }

// parseName reads a 1-10 character zone name. Names must not contain digits,
// signs, commas or the rule/time separators.
func parseName(s string) (name, rest string, err error) {
	n := 0
	for n < len(s) && n < 10 && !strings.ContainsRune("0123456789,+-", rune(s[n])) {
		n++
	}
	if n == 0 {
		return "", s, fmt.Errorf("expected name, got %q", s)
	}
	return s[:n], s[n:], nil
}

// parseOffset reads [+|-]hh[:mm[:ss]] and returns it in seconds. A leading
// "-" negates the magnitude; missing minute and second fields default to 0.
func parseOffset(s string) (offset int64, rest string, err error) {
	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	secs, rest, err := parseHMS(s)
	if err != nil {
		return 0, s, err
	}
	return sign * int64(secs), rest, nil
}

// parseHMS reads hh[:mm[:ss]] and returns the total in seconds. Missing
// minute and second fields default to 0.
func parseHMS(s string) (secs int, rest string, err error) {
	hh, rest, ok := parseNumber(s)
	if !ok {
		return 0, s, fmt.Errorf("expected hour digits, got %q", s)
	}
	secs = hh * calendar.SecondsPerHour
	for _, unit := range []int{calendar.SecondsPerMinute, 1} {
		if !strings.HasPrefix(rest, ":") {
			break
		}
		var v int
		v, rest, ok = parseNumber(rest[1:])
		if !ok {
			return 0, s, fmt.Errorf("expected digits after ':' in %q", s)
		}
		secs += v * unit
	}
	return secs, rest, nil
}

// parseNumber reads a run of leading decimal digits.
func parseNumber(s string) (v int, rest string, ok bool) {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		v = v*10 + int(s[n]-'0')
		n++
	}
	return v, s[n:], n > 0
}

// parseRule fills in the day selector and transition time of a single rule.
// An absent rule defaults to the post-2007 US transition dates.
func parseRule(r *Rule, i int, s string) (rest string, err error) {
	switch {
	case strings.HasPrefix(s, "M"):
		var ok bool
		r.Form = MonthWeekDay
		if r.Month, s, ok = parseNumber(s[1:]); !ok || r.Month < 1 || r.Month > 12 {
			return s, fmt.Errorf("month out of range")
		}
		if !strings.HasPrefix(s, ".") {
			return s, fmt.Errorf("expected '.' after month")
		}
		if r.Week, s, ok = parseNumber(s[1:]); !ok || r.Week < 1 || r.Week > 5 {
			return s, fmt.Errorf("week out of range")
		}
		if !strings.HasPrefix(s, ".") {
			return s, fmt.Errorf("expected '.' after week")
		}
		if r.Weekday, s, ok = parseNumber(s[1:]); !ok || r.Weekday > 6 {
			return s, fmt.Errorf("weekday out of range")
		}
	default:
		form := DayOfYear
		t := s
		if strings.HasPrefix(t, "J") {
			form = JulianLeap
			t = t[1:]
		}
		day, t, ok := parseNumber(t)
		if !ok {
			// No rule given: default to US settings. From 1987-2006, US was
			// M4.1.0,M10.5.0, but starting in 2007 it is M3.2.0,M11.1.0
			// (2nd Sunday March through 1st Sunday November).
			r.Form = MonthWeekDay
			if i == 0 {
				r.Month, r.Week, r.Weekday = 3, 2, 0
			} else {
				r.Month, r.Week, r.Weekday = 11, 1, 0
			}
		} else {
			if form == JulianLeap && (day < 1 || day > 365) {
				return s, fmt.Errorf("julian day out of range")
			}
			if form == DayOfYear && day > 365 {
				return s, fmt.Errorf("day of year out of range")
			}
			r.Form = form
			r.Day = day
			s = t
		}
	}

	r.TimeOfDay = DefaultTransitionTime
	if strings.HasPrefix(s, "/") {
		secs, t, err := parseHMS(s[1:])
		if err != nil {
			return s, fmt.Errorf("transition time: %w", err)
		}
		r.TimeOfDay = secs
		s = t
	}
	return s, nil
}
