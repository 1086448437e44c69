// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dates parses run targets: a single day or an inclusive day range.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical day format used in targets, reports, and filters.
const Layout = time.DateOnly

// Target is an inclusive range of calendar days. A single-day target has
// Start equal to End.
type Target struct {
	Start time.Time
	End   time.Time
}

// ParseTarget accepts "YYYY-MM-DD" or "YYYY-MM-DD:YYYY-MM-DD".
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, fmt.Errorf("empty date target: use YYYY-MM-DD or YYYY-MM-DD:YYYY-MM-DD")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) != 2 {
			return Target{}, fmt.Errorf("invalid date range %q: use YYYY-MM-DD:YYYY-MM-DD", s)
		}
		start, err := ParseDay(parts[0])
		if err != nil {
			return Target{}, err
		}
		end, err := ParseDay(parts[1])
		if err != nil {
			return Target{}, err
		}
		if end.Before(start) {
			return Target{}, fmt.Errorf("invalid date range %q: end precedes start", s)
		}
		return Target{Start: start, End: end}, nil
	}

	day, err := ParseDay(s)
	if err != nil {
		return Target{}, err
	}
	return Target{Start: day, End: day}, nil
}

// ParseDay parses a single YYYY-MM-DD day as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

// Days returns every calendar day in the target, ascending.
func (t Target) Days() []time.Time {
	var days []time.Time
	for d := t.Start; !d.After(t.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsRange reports whether the target spans more than one day.
func (t Target) IsRange() bool {
	return !t.Start.Equal(t.End)
}

// Contains reports whether the UTC calendar day of ts lies in the target.
func (t Target) Contains(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	day := Truncate(ts)
	return !day.Before(t.Start) && !day.After(t.End)
}

func (t Target) String() string {
	if !t.IsRange() {
		return Format(t.Start)
	}
	return Format(t.Start) + " ~ " + Format(t.End)
}

// Format renders a day as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Truncate returns midnight UTC of the UTC calendar day of ts.
func Truncate(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Yesterday returns the UTC calendar day before now, formatted YYYY-MM-DD.
// It is the default target of a run.
func Yesterday(now time.Time) string {
	return now.UTC().AddDate(0, 0, -1).Format(Layout)
}
