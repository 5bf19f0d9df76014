// Package calendar implements proleptic Gregorian calendar arithmetic on a
// signed 64-bit count of seconds since the Unix epoch. It is deliberately
// free of time.Location so that conversions stay correct for instants far
// beyond the 32-bit rollover in 2038.
package calendar

// The constants were copied from time.go in the Go standard library's time package.
const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
	DaysPerWeek      = 7

	daysPer400Years = 365*400 + 97
	daysPer100Years = 365*100 + 24
	daysPer4Years   = 365*4 + 1

	absoluteZeroYear         = -292277022399
	internalYear             = 1
	absoluteToInternal int64 = (absoluteZeroYear - internalYear) * 365.2425 * SecondsPerDay
	unixToInternal     int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * SecondsPerDay
	internalToUnix     int64 = -unixToInternal
)

// EpochYear is the first year for which timezone transition rules can be
// computed. EpochWeekday is the weekday of 1970-01-01 (Thursday, Sunday=0).
const (
	EpochYear    = 1970
	EpochWeekday = 4
)

// monthLengths holds the number of days per month, index 0 = January.
// Row 0 is for regular years, row 1 for leap years.
var monthLengths = [2][12]int{
	{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
	{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
}

// daysBefore[m] counts the days in a regular year before the start of month m+1.
var daysBefore = [13]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// IsLeap determines if the year is a leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// MonthLengths returns the per-month day counts for the given year,
// index 0 = January.
func MonthLengths(year int) *[12]int {
	if IsLeap(year) {
		return &monthLengths[1]
	}
	return &monthLengths[0]
}

// DaysInMonth returns the number of days in a given month (1-12) for a
// specific year.
func DaysInMonth(year, month int) int {
	return MonthLengths(year)[month-1]
}

// DaysFromEpoch returns the number of days from 1970-01-01 to January 1st of
// the given year, using exact 4/100/400 leap-rule arithmetic. The result is
// only meaningful for year >= EpochYear.
func DaysFromEpoch(year int) int64 {
	years := int64(year - EpochYear)
	return years*365 + (years-1+2)/4 - (years-1+70)/100 + (years-1+370)/400
}

// Date is a broken-down UTC instant. Month is zero-based (January = 0),
// Weekday starts on Sunday (0) and YearDay is zero-based.
type Date struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday int
	YearDay int
}

// FromUnix converts a Unix timestamp to a broken-down UTC date and time.
// It ignores leap seconds but respects leap years. It assumes the proleptic
// Gregorian calendar. This implementation is based on the Go standard
// library's time package but does not depend on time.Location.
func FromUnix(sec int64) Date {
	abs := uint64(sec - absoluteToInternal + unixToInternal)

	days := abs / SecondsPerDay

	// Account for 400-year cycles.
	n := days / daysPer400Years
	y := 400 * n
	d := days - daysPer400Years*n

	// Cut off 100-year cycles. The last cycle has one extra leap year, so on
	// the last day of that year, day / daysPer100Years will be 4 instead of 3.
	// Cut it back down to 3 by subtracting n>>2.
	n = d / daysPer100Years
	n -= n >> 2
	y += 100 * n
	d -= daysPer100Years * n

	// Cut off 4-year cycles.
	n = d / daysPer4Years
	y += 4 * n
	d -= daysPer4Years * n

	// Cut off years within a 4-year cycle. The last year is a leap year, so
	// cap at 3 as above.
	n = d / 365
	n -= n >> 2
	y += n
	d -= 365 * n

	var date Date
	date.Year = int(int64(y) + absoluteZeroYear)
	date.YearDay = int(d)

	day := date.YearDay
	if IsLeap(date.Year) {
		switch {
		case day > 31+29-1:
			// After leap day; pretend it wasn't there for the table lookup.
			day--
		case day == 31+29-1:
			date.Month = 1
			date.Day = 29
			date.fillClock(abs, days)
			return date
		}
	}
	month := day / 31
	if day >= daysBefore[month+1] {
		month++
	}
	date.Month = month
	date.Day = day - daysBefore[month] + 1
	date.fillClock(abs, days)
	return date
}

func (d *Date) fillClock(abs, days uint64) {
	// Absolute day zero is a Monday.
	d.Weekday = int((days + 1) % DaysPerWeek)
	rem := abs % SecondsPerDay
	d.Hour = int(rem / SecondsPerHour)
	rem %= SecondsPerHour
	d.Minute = int(rem / SecondsPerMinute)
	d.Second = int(rem % SecondsPerMinute)
}

// ToUnix converts a given date and time to a Unix timestamp, i.e. the number
// of seconds since 1970-01-01 00:00:00 UTC. Month is 1-12. It is the inverse
// of FromUnix for valid calendar dates.
func ToUnix(year, month, day, hour, minute, second int) int64 {
	d := daysSinceAbsoluteEpoch(year) + uint64(daysBefore[month-1]) + (uint64(day) - 1)
	if month > 2 && IsLeap(year) {
		d++ // +leap day
	}
	abs := d*SecondsPerDay + uint64(hour)*SecondsPerHour + uint64(minute)*SecondsPerMinute + uint64(second)
	return int64(abs) + (absoluteToInternal + internalToUnix)
}

// daysSinceAbsoluteEpoch takes a year and returns the number of days from
// the absolute epoch to the start of that year.
// This is basically (year - zeroYear) * 365, but accounting for leap days.
//
// This function was copied from time.go in the Go standard library time package.
func daysSinceAbsoluteEpoch(year int) uint64 {
	y := uint64(int64(year) - absoluteZeroYear)

	// Add in days from 400-year cycles.
	n := y / 400
	y -= 400 * n
	d := daysPer400Years * n

	// Add in 100-year cycles.
	n = y / 100
	y -= 100 * n
	d += daysPer100Years * n

	// Add in 4-year cycles.
	n = y / 4
	y -= 4 * n
	d += daysPer4Years * n

	// Add in non-leap years.
	n = y
	d += 365 * n

	return d
}
