// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/eduscrum/awards/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// ID represents a unique entity identifier (UUID format).
type ID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the ID is a valid UUID.
func (i ID) IsValid() bool {
	return uuidRegex.MatchString(string(i))
}

// String returns the string representation.
func (i ID) String() string {
	return string(i)
}

// IsEmpty checks if the ID is empty.
func (i ID) IsEmpty() bool {
	return i == ""
}

// NewID creates a new ID with validation.
func NewID(id string) (ID, error) {
	v := ID(strings.ToLower(strings.TrimSpace(id)))
	if !v.IsValid() {
		return "", NewDomainError("shared", "NewID", ErrInvalidID, "invalid ID format")
	}
	return v, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Points Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Points represents gamification points, either a prize value or a student's
// running total. The total is a denormalized cache over the achievement
// ledger: it only ever grows during normal operation and can be rebuilt from
// the ledger at any time.
type Points int

const (
	// MinPoints is the lower boundary; negative point values do not exist.
	MinPoints Points = 0
)

// IsValid checks if the points value is non-negative.
func (p Points) IsValid() bool {
	return p >= MinPoints
}

// Int returns the underlying int value.
func (p Points) Int() int {
	return int(p)
}

// Add returns the sum of two point values.
func (p Points) Add(delta Points) Points {
	return p + delta
}

// ═══════════════════════════════════════════════════════════════════════════
// Average Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Average represents an average point score, rounded to one decimal place.
type Average float64

// NewAverage computes total/count rounded half-up to one decimal place.
// A count of zero yields 0.0 rather than an error: a team without student
// members simply scores nothing.
func NewAverage(total Points, count int) Average {
	if count <= 0 {
		return 0.0
	}
	avg := float64(total) / float64(count)
	return Average(math.Round(avg*10) / 10)
}

// Float64 returns the underlying float64 value.
func (a Average) Float64() float64 {
	return float64(a)
}

// ═══════════════════════════════════════════════════════════════════════════
// Calendar Day Helpers
// ═══════════════════════════════════════════════════════════════════════════

// SameCalendarDay reports whether two instants fall on the same calendar day
// in the given location. The location is the application's reference
// timezone for the "at most one automatic award per day" rule.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	return timeutil.SameDay(a, b, loc)
}

// DayAfter reports whether instant a falls on a later calendar day than b
// in the given location. Used by the punctuality gate: a sprint completed
// after its planned end date earns nothing.
func DayAfter(a, b time.Time, loc *time.Location) bool {
	return timeutil.DayAfter(a, b, loc)
}
