// Package codec converts temporal values, bytes, UUIDs and URLs to and from
// their canonical textual wire forms. Validators parse with it and
// serializers format with it, so both directions agree.
package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrDateFormat     = errors.New("invalid date format")
	ErrTimeFormat     = errors.New("invalid time format")
	ErrDateTimeFormat = errors.New("invalid datetime format")
	ErrDurationFormat = errors.New("invalid duration format")
)

// ParseDate parses YYYY-MM-DD into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return t, nil
}

// FormatDate renders YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format("2006-01-02") }

var timeLayouts = []string{
	"15:04:05.999999999Z07:00",
	"15:04:05.999999999Z0700",
	"15:04:05.999999999",
	"15:04Z07:00",
	"15:04",
}

// ParseTime parses HH:MM[:SS[.fffffffff]][Z|±HH:MM]. naive is true when no
// offset was given; naive times are returned in UTC.
func ParseTime(s string) (t time.Time, naive bool, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if v, perr := time.Parse(layout, s); perr == nil {
			return v, !strings.Contains(layout, "Z07"), nil
		}
	}
	return time.Time{}, false, ErrTimeFormat
}

// FormatTime renders HH:MM:SS[.fraction][offset].
func FormatTime(t time.Time, naive bool) string {
	if naive {
		return t.Format("15:04:05.999999999")
	}
	return t.Format("15:04:05.999999999Z07:00")
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseDateTime parses RFC 3339 datetimes. A space may replace the 'T', the
// offset may be omitted (naive, interpreted as UTC) and a bare date means
// midnight.
func ParseDateTime(s string) (t time.Time, naive bool, err error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range dateTimeLayouts {
		if v, perr := time.Parse(layout, s); perr == nil {
			return v, !strings.Contains(layout, "Z07"), nil
		}
	}
	if d, derr := ParseDate(s); derr == nil {
		return d, true, nil
	}
	return time.Time{}, false, ErrDateTimeFormat
}

// FormatDateTime renders RFC 3339 with trailing fractional zeros trimmed.
func FormatDateTime(t time.Time, naive bool) string {
	if naive {
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	// Normalize to UTC when the offset is zero so the output ends in "Z".
	if _, off := t.Zone(); off == 0 {
		t = t.UTC()
	}
	return t.Format(time.RFC3339Nano)
}

// unixMillisThreshold separates second timestamps from millisecond ones.
const unixMillisThreshold = 2e10

// FromUnix converts a unix timestamp in seconds (or milliseconds when its
// magnitude exceeds 2e10) into a UTC time.
func FromUnix(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, ErrDateTimeFormat
	}
	if math.Abs(f) > unixMillisThreshold {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
}

// ParseDuration accepts ISO 8601 durations (P1DT2H3M4.5S), clock forms
// ([-][D day[s], ]HH:MM:SS[.f]) and Go duration strings (1h30m).
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrDurationFormat
	}
	if d, err := parseISODuration(s); err == nil {
		return d, nil
	}
	if d, err := parseClockDuration(s); err == nil {
		return d, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return 0, ErrDurationFormat
}

func parseISODuration(s string) (time.Duration, error) {
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) < 2 || (s[0] != 'P' && s[0] != 'p') {
		return 0, ErrDurationFormat
	}
	s = strings.ToUpper(s[1:])
	var total float64
	inTime := false
	units := 0
	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime {
				return 0, ErrDurationFormat
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, ErrDurationFormat
		}
		n, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return 0, ErrDurationFormat
		}
		var unit float64
		switch c := s[i]; {
		case c == 'Y' && !inTime:
			unit = 365 * 24 * 3600
		case c == 'M' && !inTime:
			unit = 30 * 24 * 3600
		case c == 'W' && !inTime:
			unit = 7 * 24 * 3600
		case c == 'D' && !inTime:
			unit = 24 * 3600
		case c == 'H' && inTime:
			unit = 3600
		case c == 'M' && inTime:
			unit = 60
		case c == 'S' && inTime:
			unit = 1
		default:
			return 0, ErrDurationFormat
		}
		total += n * unit
		units++
		s = s[i+1:]
	}
	if units == 0 {
		return 0, ErrDurationFormat
	}
	d := time.Duration(math.Round(total * float64(time.Second)))
	if neg {
		d = -d
	}
	return d, nil
}

func parseClockDuration(s string) (time.Duration, error) {
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = strings.TrimSpace(s[1:])
	}
	var days float64
	if i := strings.Index(s, "day"); i > 0 {
		n, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
		if err != nil {
			return 0, ErrDurationFormat
		}
		days = n
		s = strings.TrimLeft(s[i+3:], "s")
		s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ","))
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, ErrDurationFormat
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil || m > 59 || sec >= 60 {
		return 0, ErrDurationFormat
	}
	total := days*86400 + float64(h)*3600 + float64(m)*60 + sec
	d := time.Duration(math.Round(total * float64(time.Second)))
	if neg {
		d = -d
	}
	return d, nil
}

// FormatDuration renders an ISO 8601 duration using days, hours, minutes and
// seconds, e.g. P1DT2H, PT1.5S, -PT30M. Zero is PT0S.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	b := &strings.Builder{}
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(b, "%dD", days)
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	if h > 0 {
		fmt.Fprintf(b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(b, "%dM", m)
	}
	if d > 0 {
		sec := strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
		b.WriteString(sec)
		b.WriteByte('S')
	}
	return b.String()
}
