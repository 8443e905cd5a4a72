// Package dateparse provides utilities for parsing relative and absolute due
// date strings and for bucketing timestamps into the calendar ranges the
// filter engine evaluates against.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate parses a due date input string and returns a timestamp at local
// midnight of the resolved day. Uses the current time as the reference point.
//
// Supported formats:
//   - Exact dates: "2026-03-01"
//   - Relative days: "+7d"
//   - Relative weeks: "+2w"
//   - Relative months: "+1m"
//   - Day names: "monday", "tuesday", etc. (next occurrence)
//   - Keywords: "today", "tomorrow", "this-week", "next-week"
func ParseDate(input string) (time.Time, error) {
	return ParseDateFrom(input, time.Now())
}

// ParseDateFrom parses a due date input string relative to the given
// reference time. This variant enables deterministic testing with a fixed "now".
func ParseDateFrom(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}

	// Exact date: YYYY-MM-DD
	if t, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
		return t, nil
	}

	// Keywords
	switch input {
	case "today":
		return StartOfDay(now), nil
	case "tomorrow":
		return StartOfDay(now.AddDate(0, 0, 1)), nil
	case "this-week", "this_week":
		// End of the current 7-day window
		return StartOfDay(now.AddDate(0, 0, 7)), nil
	case "next-week", "next_week":
		// Next Monday
		daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if daysUntilMonday == 0 {
			daysUntilMonday = 7
		}
		return StartOfDay(now.AddDate(0, 0, daysUntilMonday)), nil
	}

	// Relative offsets: +Nd, +Nw, +Nm
	if strings.HasPrefix(input, "+") && len(input) >= 3 {
		suffix := input[len(input)-1]
		numStr := input[1 : len(input)-1]
		n, err := strconv.Atoi(numStr)
		if err == nil && n >= 0 {
			switch suffix {
			case 'd':
				return StartOfDay(now.AddDate(0, 0, n)), nil
			case 'w':
				return StartOfDay(now.AddDate(0, 0, n*7)), nil
			case 'm':
				return StartOfDay(now.AddDate(0, n, 0)), nil
			default:
				return time.Time{}, fmt.Errorf("unknown relative unit %q in %q (use d, w, or m)", string(suffix), input)
			}
		}
	}

	// Day names: next occurrence of that weekday
	dayMap := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	if target, ok := dayMap[input]; ok {
		daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7 // always advance to next occurrence
		}
		return StartOfDay(now.AddDate(0, 0, daysAhead)), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", input)
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// WithinDays reports whether t falls inside [now, now+days], bounds inclusive,
// comparing at calendar-day granularity.
func WithinDays(t, now time.Time, days int) bool {
	start := StartOfDay(now)
	end := StartOfDay(now.AddDate(0, 0, days)).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return !t.Before(start) && !t.After(end)
}

// NextWeekRange returns the [start, end] bounds of the next Monday-to-Sunday
// calendar week relative to now.
func NextWeekRange(now time.Time) (time.Time, time.Time) {
	daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	start := StartOfDay(now.AddDate(0, 0, daysUntilMonday))
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}

// DayKey returns the ISO date string for t, used as a grouping key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
