package util

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the ISO calendar date used for partitions and watermarks.
	DateLayout = "2006-01-02"
	// TimestampLayout stamps watermark rows.
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseDate parses YYYY-MM-DD into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf drops the clock part, keeping the calendar date of t in its own
// location, and returns it as a UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DateRange lists every calendar date from start to end inclusive.
// It is empty when start is after end.
func DateRange(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	var out []time.Time
	for d := start; !d.After(end); d = AddDays(d, 1) {
		out = append(out, d)
	}
	return out
}

// FormatDates renders a list of dates as YYYY-MM-DD strings.
func FormatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = FormatDate(d)
	}
	return out
}
