package elort

import (
	"time"

	"github.com/evoludigit/elo/internal/iso8601"
)

// clock is the source of the current instant. Tests replace it.
var clock = time.Now

const day = 24 * time.Hour

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfWeek(now time.Time) time.Time {
	t := midnight(now)
	back := (int(t.Weekday()) + 6) % 7 // weeks start on Monday
	return t.AddDate(0, 0, -back)
}

func startOfMonth(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func startOfQuarter(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	first := time.Month((int(m)-1)/3*3 + 1)
	return time.Date(y, first, 1, 0, 0, 0, 0, time.UTC)
}

func startOfYear(now time.Time) time.Time {
	return time.Date(now.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// Now is the current instant in UTC.
func Now() time.Time { return clock().UTC() }

// Today is the current date, at midnight UTC.
func Today() time.Time { return midnight(clock()) }

func Tomorrow() time.Time  { return Today().AddDate(0, 0, 1) }
func Yesterday() time.Time { return Today().AddDate(0, 0, -1) }

// StartOfDay is the first instant of today.
func StartOfDay() time.Time { return Today() }

// EndOfDay is the last representable instant of today.
func EndOfDay() time.Time { return Today().Add(day - time.Nanosecond) }

// StartOfWeek is the Monday of the current week.
func StartOfWeek() time.Time { return startOfWeek(clock()) }

// EndOfWeek is the Sunday of the current week.
func EndOfWeek() time.Time { return startOfWeek(clock()).AddDate(0, 0, 6) }

func StartOfMonth() time.Time { return startOfMonth(clock()) }

// EndOfMonth is the last day of the current month.
func EndOfMonth() time.Time { return startOfMonth(clock()).AddDate(0, 1, -1) }

func StartOfQuarter() time.Time { return startOfQuarter(clock()) }
func EndOfQuarter() time.Time   { return startOfQuarter(clock()).AddDate(0, 3, -1) }
func StartOfYear() time.Time    { return startOfYear(clock()) }
func EndOfYear() time.Time      { return startOfYear(clock()).AddDate(1, 0, -1) }

// BeginningOfTime is 1970-01-01.
func BeginningOfTime() time.Time { return time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC) }

// EndOfTime is 9999-12-31.
func EndOfTime() time.Time { return time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC) }

func age(born, now time.Time) int64 {
	born, now = born.UTC(), now.UTC()
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return int64(years)
}

// Age is the number of whole years from t until today.
func Age(t time.Time) int64 { return age(t, clock()) }

// DaysSince is the number of whole days from t until now.
func DaysSince(t time.Time) int64 { return int64(Now().Sub(t) / day) }

// DurationDays is the number of whole days in d.
func DurationDays(d time.Duration) int64 { return int64(d / day) }

// ParseDate parses YYYY-MM-DD. It panics when s is not a date; generated
// code runs it under Guard, so a malformed value fails the check.
func ParseDate(s string) time.Time {
	t, err := iso8601.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDateTime parses an RFC 3339 instant, panicking like ParseDate.
func ParseDateTime(s string) time.Time {
	t, err := iso8601.ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDuration parses an ISO-8601 duration, panicking like ParseDate.
func ParseDuration(s string) time.Duration {
	d, err := iso8601.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}
