// Package timeutil provides timezone-aware calendar utilities.
// Award semantics (punctuality, once-per-day suppression) are defined in
// terms of calendar days in a configured reference timezone, so every
// helper here takes an explicit *time.Location.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// FormatDate is the standard date format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// In converts a time to the given location. Nil means UTC.
func In(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}

// DayKey returns the calendar day of t in loc as a YYYY-MM-DD string.
// Two instants with equal day keys fall on the same calendar day.
func DayKey(t time.Time, loc *time.Location) string {
	return In(t, loc).Format(FormatDate)
}

// StartOfDay returns the start of the day (00:00:00) of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := In(t, loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// SameDay checks if two times fall on the same calendar day in loc.
func SameDay(t1, t2 time.Time, loc *time.Location) bool {
	a1, a2 := In(t1, loc), In(t2, loc)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// DayAfter checks if t1 falls on a strictly later calendar day than t2 in loc.
func DayAfter(t1, t2 time.Time, loc *time.Location) bool {
	return StartOfDay(t1, loc).After(StartOfDay(t2, loc))
}
