package tzrule

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	cases := []struct {
		desc string
		want Zone
	}{
		{
			desc: "",
			want: Zone{StdName: "GMT", DstName: "GMT"},
		},
		{
			desc: "UTC0",
			want: Zone{StdName: "UTC", DstName: "UTC"},
		},
		{
			desc: "CET-1",
			want: Zone{
				StdName: "CET",
				DstName: "CET",
				Rules: [2]Rule{
					{Offset: -3600},
					{Offset: -3600},
				},
			},
		},
		{
			desc: "CET-1CEST-2,M3.5.0/2,M10.5.0/3",
			want: Zone{
				StdName:  "CET",
				DstName:  "CEST",
				daylight: true,
				Rules: [2]Rule{
					{Form: MonthWeekDay, Month: 3, Week: 5, Weekday: 0, TimeOfDay: 7200, Offset: -3600},
					{Form: MonthWeekDay, Month: 10, Week: 5, Weekday: 0, TimeOfDay: 10800, Offset: -7200},
				},
			},
		},
		{
			// Daylight name without offset defaults to one hour east of
			// standard; missing rules default to the post-2007 US pair.
			desc: "EST5EDT",
			want: Zone{
				StdName:  "EST",
				DstName:  "EDT",
				daylight: true,
				Rules: [2]Rule{
					{Form: MonthWeekDay, Month: 3, Week: 2, Weekday: 0, TimeOfDay: 7200, Offset: 5 * 3600},
					{Form: MonthWeekDay, Month: 11, Week: 1, Weekday: 0, TimeOfDay: 7200, Offset: 4 * 3600},
				},
			},
		},
		{
			desc: "EST+5EDT+4,M3.2.0,M11.1.0",
			want: Zone{
				StdName:  "EST",
				DstName:  "EDT",
				daylight: true,
				Rules: [2]Rule{
					{Form: MonthWeekDay, Month: 3, Week: 2, Weekday: 0, TimeOfDay: 7200, Offset: 5 * 3600},
					{Form: MonthWeekDay, Month: 11, Week: 1, Weekday: 0, TimeOfDay: 7200, Offset: 4 * 3600},
				},
			},
		},
		{
			// Southern hemisphere with Julian day rules and explicit times.
			desc: "NZST-12NZDT-13,J268/2,J98/3",
			want: Zone{
				StdName:  "NZST",
				DstName:  "NZDT",
				daylight: true,
				Rules: [2]Rule{
					{Form: JulianLeap, Day: 268, TimeOfDay: 7200, Offset: -12 * 3600},
					{Form: JulianLeap, Day: 98, TimeOfDay: 10800, Offset: -13 * 3600},
				},
			},
		},
		{
			desc: "FOO+1BAR,60/1,300",
			want: Zone{
				StdName:  "FOO",
				DstName:  "BAR",
				daylight: true,
				Rules: [2]Rule{
					{Form: DayOfYear, Day: 60, TimeOfDay: 3600, Offset: 3600},
					{Form: DayOfYear, Day: 300, TimeOfDay: 7200, Offset: 0},
				},
			},
		},
		{
			// Offsets with minute and second fields.
			desc: "IST-5:30",
			want: Zone{
				StdName: "IST",
				DstName: "IST",
				Rules: [2]Rule{
					{Offset: -(5*3600 + 30*60)},
					{Offset: -(5*3600 + 30*60)},
				},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			got, err := Parse(c.desc)
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.desc, err)
			}
			opts := cmp.Options{
				cmp.AllowUnexported(Zone{}),
				cmpopts.IgnoreFields(Zone{}, "year", "northern"),
			}
			if diff := cmp.Diff(c.want, got, opts); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", c.desc, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"CET",                              // name without offset
		"123",                              // offset without name
		"CET-1CEST-2,M13.5.0,M10.5.0",      // month out of range
		"CET-1CEST-2,M3.0.0,M10.5.0",       // week out of range
		"CET-1CEST-2,M3.6.0,M10.5.0",       // week out of range
		"CET-1CEST-2,M3.5.7,M10.5.0",       // weekday out of range
		"CET-1CEST-2,M3.5,M10.5.0",         // missing weekday
		"CET-1CEST-2,J366,M10.5.0",         // julian day out of range
		"CET-1CEST-2,J0,M10.5.0",           // julian day out of range
		"CET-1CEST-2,M3.5.0/xx,M10.5.0/3",  // malformed transition time
		"CET-1CEST-2,M3.5.0/2,M10.5.0/3,x", // trailing garbage
	}
	for _, desc := range cases {
		if _, err := Parse(desc); err == nil {
			t.Errorf("Parse(%q): expected error", desc)
		}
	}
}

func TestTransitionsCET2021(t *testing.T) {
	z, err := Parse("CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	if err != nil {
		t.Fatal(err)
	}
	toDST, toStd, err := z.Transitions(2021)
	if err != nil {
		t.Fatal(err)
	}
	// Spring forward 2021-03-28T01:00:00Z, fall back 2021-10-31T01:00:00Z.
	if want := int64(1616893200); toDST != want {
		t.Errorf("toDST = %d, want %d", toDST, want)
	}
	if want := int64(1635642000); toStd != want {
		t.Errorf("toStd = %d, want %d", toStd, want)
	}
	if !z.Northern() {
		t.Error("CET should be flagged as northern")
	}
}

func TestTransitionsRecompute(t *testing.T) {
	z, err := Parse("CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	if err != nil {
		t.Fatal(err)
	}
	a1, b1, err := z.Transitions(2021)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := z.Transitions(2024); err != nil {
		t.Fatal(err)
	}
	// Switching back must reproduce the exact same instants.
	a2, b2, err := z.Transitions(2021)
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 || b1 != b2 {
		t.Errorf("recompute not idempotent: (%d,%d) != (%d,%d)", a1, b1, a2, b2)
	}
}

func TestTransitionsJulianLeapAdjustment(t *testing.T) {
	// J60 is always March 1st, also in leap years.
	z, err := Parse("AAA0BBB-1,J60/0,J61/0")
	if err != nil {
		t.Fatal(err)
	}
	toDST, _, err := z.Transitions(2024)
	if err != nil {
		t.Fatal(err)
	}
	// 2024-03-01T00:00:00Z
	if want := int64(1709251200); toDST != want {
		t.Errorf("J60 in leap year = %d, want %d", toDST, want)
	}

	// The bare day-of-year form is zero-based and gets no leap adjustment:
	// day 60 in 2024 is March 1st only because of the leap day.
	z2, err := Parse("AAA0BBB-1,60/0,61/0")
	if err != nil {
		t.Fatal(err)
	}
	toDST2, _, err := z2.Transitions(2024)
	if err != nil {
		t.Fatal(err)
	}
	if toDST2 != toDST {
		t.Errorf("day-of-year 60 in leap year = %d, want %d", toDST2, toDST)
	}
}

func TestTransitionsBeforeEpoch(t *testing.T) {
	z, err := Parse("CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := z.Transitions(1969); err != ErrYearBeforeEpoch {
		t.Errorf("Transitions(1969) err = %v, want ErrYearBeforeEpoch", err)
	}
}

func TestOffsetAt(t *testing.T) {
	z, err := Parse("CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name    string
		sec     int64
		year    int
		offset  int64
		dst     bool
		known   bool
	}{
		{"one second before spring forward", 1616893199, 2021, -3600, false, true},
		{"one second after spring forward", 1616893201, 2021, -7200, true, true},
		{"one second before fall back", 1635641999, 2021, -7200, true, true},
		{"one second after fall back", 1635642001, 2021, -3600, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			offset, dst, known := z.OffsetAt(c.sec, c.year)
			if offset != c.offset || dst != c.dst || known != c.known {
				t.Errorf("OffsetAt(%d, %d) = (%d, %v, %v), want (%d, %v, %v)",
					c.sec, c.year, offset, dst, known, c.offset, c.dst, c.known)
			}
		})
	}
}

func TestOffsetAtSouthern(t *testing.T) {
	// NZ style zone: daylight saving from late September until early April.
	z, err := Parse("NZST-12NZDT-13,M9.5.0,M4.1.0/3")
	if err != nil {
		t.Fatal(err)
	}
	toDST, toStd, err := z.Transitions(2021)
	if err != nil {
		t.Fatal(err)
	}
	if z.Northern() {
		t.Fatal("NZ zone should not be flagged as northern")
	}
	if _, dst, _ := z.OffsetAt(toDST-1, 2021); dst {
		t.Error("just before the September transition should be standard time")
	}
	if _, dst, _ := z.OffsetAt(toDST+1, 2021); !dst {
		t.Error("just after the September transition should be daylight time")
	}
	if _, dst, _ := z.OffsetAt(toStd-1, 2021); !dst {
		t.Error("just before the April transition should be daylight time")
	}
	if _, dst, _ := z.OffsetAt(toStd+1, 2021); dst {
		t.Error("just after the April transition should be standard time")
	}
}

func TestOffsetAtUnknownYear(t *testing.T) {
	z, err := Parse("CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	if err != nil {
		t.Fatal(err)
	}
	offset, dst, known := z.OffsetAt(-1000, 1969)
	if known {
		t.Error("pre-epoch year should report the daylight state as unknown")
	}
	if dst {
		t.Error("pre-epoch year should not report daylight saving")
	}
	if offset != -3600 {
		t.Errorf("pre-epoch offset = %d, want standard offset -3600", offset)
	}
}
