// Package schedule computes when the daily report is due.
//
// A schedule is anchored to a wall-clock time of day. The first due time is
// the nearest occurrence at or after startup; afterwards it only moves by
// whole days through Advance. Missed days are not replayed in bulk.
package schedule

import (
	"fmt"
	"time"
)

// Day is the fixed step applied by Advance.
const Day = 24 * time.Hour

// TimeOfDay is an HH:MM wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant of t on the calendar day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, ref.Location())
}

// ComputeInitialDue returns today's occurrence of tod if it is not before now,
// otherwise tomorrow's.
func ComputeInitialDue(tod TimeOfDay, now time.Time) time.Time {
	due := tod.On(now)
	if due.Before(now) {
		y, m, d := now.Date()
		due = time.Date(y, m, d+1, tod.Hour, tod.Minute, 0, 0, now.Location())
	}
	return due
}

// Schedule tracks the next due time of the daily report.
// It is owned by a single report loop and is not safe for concurrent use.
type Schedule struct {
	TimeOfDay TimeOfDay
	NextDue   time.Time
}

// New creates a schedule whose first due time is computed from now.
func New(tod TimeOfDay, now time.Time) *Schedule {
	return &Schedule{
		TimeOfDay: tod,
		NextDue:   ComputeInitialDue(tod, now),
	}
}

// IsDue reports whether now has reached the next due time.
func (s *Schedule) IsDue(now time.Time) bool {
	return !now.Before(s.NextDue)
}

// Advance moves the next due time forward by exactly one day.
func (s *Schedule) Advance() {
	s.NextDue = s.NextDue.Add(Day)
}
