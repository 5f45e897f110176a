// Package iso8601 parses the date, date-time and duration notations used in
// rule literals and by the validator runtime.
package iso8601

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the layout of calendar dates.
const DateLayout = "2006-01-02"

// ErrSyntax is returned for text that is not a valid ISO-8601 value.
var ErrSyntax = errors.New("invalid ISO-8601 value")

// ParseDate parses YYYY-MM-DD as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrSyntax, "date %q", s)
	}
	return t, nil
}

// ParseDateTime parses an RFC 3339 instant, with optional fractional seconds.
// The result is in UTC.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrSyntax, "datetime %q", s)
	}
	return t.UTC(), nil
}

// ParseDuration parses P[nW][nD][T[nH][nM][n[.n]S]]. Years and months have
// no fixed length and are rejected.
func ParseDuration(s string) (time.Duration, error) {
	fail := func(why string) (time.Duration, error) {
		return 0, errors.Wrapf(ErrSyntax, "duration %q: %s", s, why)
	}

	rest := strings.TrimPrefix(s, "P")
	if rest == s {
		return fail("must start with P")
	}
	if rest == "" {
		return fail("no components")
	}

	var total time.Duration
	inTime := false
	components := 0
	order := 0 // units must appear in decreasing size

	for rest != "" {
		if rest[0] == 'T' {
			if inTime {
				return fail("repeated T")
			}
			inTime = true
			rest = rest[1:]
			if rest == "" {
				return fail("T without time components")
			}
			continue
		}

		i := 0
		for i < len(rest) && (rest[i] >= '0' && rest[i] <= '9' || rest[i] == '.') {
			i++
		}
		if i == 0 || i == len(rest) {
			return fail("expected a number followed by a unit")
		}
		num, unit := rest[:i], rest[i]
		rest = rest[i+1:]

		var size time.Duration
		var rank int
		switch {
		case !inTime && unit == 'W':
			size, rank = 7*24*time.Hour, 1
		case !inTime && unit == 'D':
			size, rank = 24*time.Hour, 2
		case inTime && unit == 'H':
			size, rank = time.Hour, 3
		case inTime && unit == 'M':
			size, rank = time.Minute, 4
		case inTime && unit == 'S':
			size, rank = time.Second, 5
		case !inTime && (unit == 'Y' || unit == 'M'):
			return fail("years and months are not fixed lengths")
		default:
			return fail("unknown unit " + string(unit))
		}
		if rank <= order {
			return fail("units out of order")
		}
		order = rank

		if strings.Contains(num, ".") {
			if unit != 'S' {
				return fail("only seconds may be fractional")
			}
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return fail("bad number " + num)
			}
			d := f * float64(time.Second)
			if d > math.MaxInt64-float64(total) {
				return fail("out of range")
			}
			total += time.Duration(d)
		} else {
			n, err := strconv.ParseInt(num, 10, 64)
			if err != nil {
				return fail("bad number " + num)
			}
			if n > int64(math.MaxInt64-total)/int64(size) {
				return fail("out of range")
			}
			total += time.Duration(n) * size
		}
		components++
	}
	if components == 0 {
		return fail("no components")
	}
	return total, nil
}

// FormatDuration writes d in the notation accepted by ParseDuration.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	var b strings.Builder
	b.WriteString("P")
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10) + "D")
	}
	if d == 0 {
		if days == 0 {
			b.WriteString("T0S")
		}
		return b.String()
	}
	b.WriteString("T")
	if h := d / time.Hour; h > 0 {
		b.WriteString(strconv.FormatInt(int64(h), 10) + "H")
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		b.WriteString(strconv.FormatInt(int64(m), 10) + "M")
		d -= m * time.Minute
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "S")
	}
	return b.String()
}
