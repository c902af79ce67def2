package contract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 years ago", "3 months ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// maxRelativeValue bounds N so that hour and minute offsets cannot overflow time.Duration.
const maxRelativeValue = 100000

// ParseRelativeTime converts strings like "2 years ago" into a time.Time before now.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	matches := relativeTimeRe.FindStringSubmatch(s)

	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	// 1: Value (e.g., "2")
	// 2: Unit (e.g., "year" or "month")
	value, err := strconv.Atoi(matches[1])
	if err != nil || value > maxRelativeValue {
		return time.Time{}, fmt.Errorf("relative time value out of range: %s", matches[1])
	}
	unit := matches[2]

	switch unit {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	case "minute":
		return now.Add(time.Duration(-value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit: %s", unit)
	}
}

// ParseCursorSpec parses a cursor given as a progress value in [0,100],
// an absolute RFC3339 timestamp, or "N units ago" relative to the newest commit.
// An empty string yields an unset spec.
func ParseCursorSpec(s string) (CursorSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CursorSpec{}, nil
	}

	if p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64); err == nil {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return CursorSpec{}, fmt.Errorf("%w: progress must be between 0 and 100 (received %g)", ErrInvalidCursor, p)
		}
		return CursorSpec{Set: true, Progress: &p}, nil
	}

	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return CursorSpec{Set: true, At: t}, nil
	}

	if relativeTimeRe.MatchString(strings.Join(strings.Fields(strings.ToLower(s)), " ")) {
		return CursorSpec{Set: true, Relative: s}, nil
	}

	return CursorSpec{}, fmt.Errorf("%w: %q. Expected progress 0-100, ISO8601, or 'N [units] ago'", ErrInvalidCursor, s)
}

// ResolveTime turns a time-based spec into a timestamp, using newest as the anchor
// for relative specs. It returns false for progress-based or unset specs.
func (c CursorSpec) ResolveTime(newest time.Time) (time.Time, bool, error) {
	switch {
	case !c.Set || c.Progress != nil:
		return time.Time{}, false, nil
	case c.Relative != "":
		t, err := ParseRelativeTime(c.Relative, newest)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		return t, true, nil
	default:
		return c.At, true, nil
	}
}
