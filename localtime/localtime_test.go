package localtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dotmatrix/clockd/tzrule"
)

func mustParse(t *testing.T, desc string) tzrule.Zone {
	t.Helper()
	z, err := tzrule.Parse(desc)
	if err != nil {
		t.Fatalf("Parse(%q): %v", desc, err)
	}
	return z
}

func TestFromUnixDSTBoundaries(t *testing.T) {
	z := mustParse(t, "CET-1CEST-2,M3.5.0/2,M10.5.0/3")

	const (
		springForward = 1616893200 // 2021-03-28T01:00:00Z
		fallBack      = 1635642000 // 2021-10-31T01:00:00Z
	)

	cases := []struct {
		name string
		sec  int64
		want Time
	}{
		{
			name: "one second before spring forward",
			sec:  springForward - 1,
			want: Time{Year: 2021, Month: 2, Day: 28, Hour: 1, Minute: 59, Second: 59, Weekday: 0, YearDay: 86, DST: Off},
		},
		{
			name: "one second after spring forward",
			sec:  springForward + 1,
			want: Time{Year: 2021, Month: 2, Day: 28, Hour: 3, Minute: 0, Second: 1, Weekday: 0, YearDay: 86, DST: On},
		},
		{
			name: "one second before fall back",
			sec:  fallBack - 1,
			want: Time{Year: 2021, Month: 9, Day: 31, Hour: 2, Minute: 59, Second: 59, Weekday: 0, YearDay: 303, DST: On},
		},
		{
			name: "one second after fall back",
			sec:  fallBack + 1,
			want: Time{Year: 2021, Month: 9, Day: 31, Hour: 2, Minute: 0, Second: 1, Weekday: 0, YearDay: 303, DST: Off},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FromUnix(&z, c.sec)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("FromUnix(%d) mismatch (-want +got):\n%s", c.sec, diff)
			}
		})
	}
}

func TestFromUnixBeyond2038(t *testing.T) {
	z := mustParse(t, "CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	got := FromUnix(&z, 2208988800) // 2040-01-01T00:00:00Z
	want := Time{Year: 2040, Month: 0, Day: 1, Hour: 1, Weekday: 0, YearDay: 0, DST: Off}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFromUnixLeapDay(t *testing.T) {
	z := mustParse(t, "")
	got := FromUnix(&z, 1709208000) // 2024-02-29T12:00:00Z
	want := Time{Year: 2024, Month: 1, Day: 29, Hour: 12, Weekday: 4, YearDay: 59, DST: Off}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("leap day mismatch (-want +got):\n%s", diff)
	}

	next := FromUnix(&z, 1709208000+86400)
	if next.Month != 2 || next.Day != 1 {
		t.Errorf("day after leap day = month %d day %d, want month 2 day 1", next.Month, next.Day)
	}
}

func TestFromUnixForwardRolloverAcrossNewYear(t *testing.T) {
	// East of UTC: 1h offset pushes the last UTC hour of 2021 into 2022.
	z := mustParse(t, "CET-1")
	got := FromUnix(&z, 1640993400) // 2021-12-31T23:30:00Z
	want := Time{Year: 2022, Month: 0, Day: 1, Hour: 0, Minute: 30, Weekday: 6, YearDay: 0, DST: Off}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFromUnixBackwardRolloverAcrossNewYear(t *testing.T) {
	// West of UTC: the first UTC hour of 2022 is still Dec 31 in New York.
	z := mustParse(t, "EST5")
	got := FromUnix(&z, 1640998800) // 2022-01-01T01:00:00Z
	want := Time{Year: 2021, Month: 11, Day: 31, Hour: 20, Weekday: 5, YearDay: 364, DST: Off}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFromUnixPreEpochYearUnknown(t *testing.T) {
	z := mustParse(t, "CET-1CEST-2,M3.5.0/2,M10.5.0/3")
	got := FromUnix(&z, -1000) // 1969-12-31T23:43:20Z
	if got.DST != Unknown {
		t.Errorf("DST = %v, want Unknown", got.DST)
	}
	// Standard offset only: 1970-01-01T00:43:20+01:00.
	if got.Year != 1970 || got.Hour != 0 || got.Minute != 43 || got.Second != 20 {
		t.Errorf("got %v, want 1970-01-01 00:43:20", got)
	}
}

func TestRoundTrip(t *testing.T) {
	zones := []string{
		"",
		"CET-1CEST-2,M3.5.0/2,M10.5.0/3",
		"EST5EDT",
		"NZST-12NZDT-13,M9.5.0,M4.1.0/3",
		"IST-5:30",
	}
	const step = 2717*3600 + 411 // odd step to hit varied times of day
	for _, desc := range zones {
		z := mustParse(t, desc)
		for sec := int64(0); sec < 4*365*86400; sec += step {
			for _, base := range []int64{0, 1600000000, 2300000000} {
				instant := base + sec
				lt := FromUnix(&z, instant)
				offset := z.StdOffset()
				if lt.DST == On {
					offset = z.DstOffset()
				}
				if got := ToUnix(lt, offset); got != instant {
					t.Fatalf("zone %q: round trip of %d gave %d (local %v)", desc, instant, got, lt)
				}
			}
		}
	}
}
