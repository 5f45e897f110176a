package elort

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func date(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func withClock(t *testing.T, now string) {
	t.Helper()
	saved := clock
	clock = func() time.Time { return at(now) }
	t.Cleanup(func() { clock = saved })
}

func TestKeywords(t *testing.T) {
	// Thursday evening in New York is already Friday in UTC
	withClock(t, "2024-05-16T22:30:00-04:00")

	cases := map[string]struct {
		got  time.Time
		want time.Time
	}{
		"now":               {Now(), at("2024-05-17T02:30:00Z")},
		"today":             {Today(), date("2024-05-17")},
		"tomorrow":          {Tomorrow(), date("2024-05-18")},
		"yesterday":         {Yesterday(), date("2024-05-16")},
		"start_of_day":      {StartOfDay(), date("2024-05-17")},
		"end_of_day":        {EndOfDay(), at("2024-05-17T23:59:59Z").Add(999999999)},
		"start_of_week":     {StartOfWeek(), date("2024-05-13")},
		"end_of_week":       {EndOfWeek(), date("2024-05-19")},
		"start_of_month":    {StartOfMonth(), date("2024-05-01")},
		"end_of_month":      {EndOfMonth(), date("2024-05-31")},
		"start_of_quarter":  {StartOfQuarter(), date("2024-04-01")},
		"end_of_quarter":    {EndOfQuarter(), date("2024-06-30")},
		"start_of_year":     {StartOfYear(), date("2024-01-01")},
		"end_of_year":       {EndOfYear(), date("2024-12-31")},
		"beginning_of_time": {BeginningOfTime(), date("1970-01-01")},
		"end_of_time":       {EndOfTime(), date("9999-12-31")},
	}

	for key, c := range cases {
		if !c.got.Equal(c.want) {
			t.Errorf("case %s: got %v, want %v", key, c.got, c.want)
		}
		if c.got.Location() != time.UTC {
			t.Errorf("case %s: not in UTC: %v", key, c.got)
		}
	}
}

func TestWeekBoundaries(t *testing.T) {
	is := is.New(t)

	is.Equal(startOfWeek(date("2024-05-13")), date("2024-05-13")) // Monday
	is.Equal(startOfWeek(date("2024-05-19")), date("2024-05-13")) // Sunday
	is.Equal(startOfWeek(date("2024-01-03")), date("2024-01-01"))
	is.Equal(startOfWeek(date("2023-01-01")), date("2022-12-26")) // across a year
}

func TestMonthBoundaries(t *testing.T) {
	is := is.New(t)

	withClock(t, "2024-02-10T00:00:00Z")
	is.Equal(EndOfMonth(), date("2024-02-29")) // leap year

	withClock(t, "2023-02-10T00:00:00Z")
	is.Equal(EndOfMonth(), date("2023-02-28"))

	withClock(t, "2023-12-31T12:00:00Z")
	is.Equal(EndOfMonth(), date("2023-12-31"))
	is.Equal(StartOfQuarter(), date("2023-10-01"))
	is.Equal(EndOfQuarter(), date("2023-12-31"))
}

func TestAge(t *testing.T) {

	cases := []struct {
		born, now string
		want      int64
	}{
		{"2006-05-17", "2024-05-17", 18},
		{"2006-05-18", "2024-05-17", 17},
		{"2006-04-30", "2024-05-17", 18},
		{"2000-02-29", "2023-02-28", 22},
		{"2000-02-29", "2023-03-01", 23},
		{"2030-01-01", "2024-05-17", -6},
	}

	for _, c := range cases {
		if got := age(date(c.born), date(c.now)); got != c.want {
			t.Errorf("age(%s, %s) = %d, want %d", c.born, c.now, got, c.want)
		}
	}
}

func TestDays(t *testing.T) {
	is := is.New(t)
	withClock(t, "2024-05-17T12:00:00Z")

	is.Equal(DaysSince(date("2024-05-10")), int64(7))
	is.Equal(DaysSince(at("2024-05-16T13:00:00Z")), int64(0))
	is.Equal(DurationDays(36*time.Hour), int64(1))
}

func TestParse(t *testing.T) {
	is := is.New(t)

	is.Equal(ParseDate("2024-01-15"), date("2024-01-15"))
	is.Equal(ParseDuration("P1DT2H"), 26*time.Hour)
	is.True(ParseDateTime("2024-01-15T10:00:00+02:00").Equal(at("2024-01-15T08:00:00Z")))

	is.True(!Guard(func() bool { return ParseDate("2024-13-01").IsZero() })) // panics, check fails
	is.True(!Guard(func() bool { return ParseDuration("P1Y") > 0 }))
}
