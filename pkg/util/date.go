package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// DayBounds returns the [start, end] unix-second bounds of the calendar day
// containing t in the given zone. End is the last second of the day.
func DayBounds(t time.Time, loc *time.Location) (int64, int64) {
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	return start.Unix(), start.Add(24*time.Hour).Unix() - 1
}

// DateBounds is DayBounds for a YYYY-MM-DD date string. Returns ok=false on
// a malformed date.
func DateBounds(date string, loc *time.Location) (int64, int64, bool) {
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return 0, 0, false
	}
	return d.Unix(), d.Add(24*time.Hour).Unix() - 1, true
}
