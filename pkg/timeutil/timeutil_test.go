package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var almaty = time.FixedZone("UTC+5", 5*60*60)

func TestDayKey(t *testing.T) {
	at := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-14", DayKey(at, time.UTC))
	// 22:00 UTC is already March 15 in UTC+5
	assert.Equal(t, "2026-03-15", DayKey(at, almaty))
	// Nil location defaults to UTC
	assert.Equal(t, "2026-03-14", DayKey(at, nil))
}

func TestStartOfDay(t *testing.T) {
	at := time.Date(2026, 3, 14, 15, 30, 45, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(at, time.UTC))

	// The day starts on the local midnight of the reference timezone
	late := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, almaty), StartOfDay(late, almaty))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	nextNight := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)

	assert.True(t, SameDay(morning, evening, time.UTC))
	assert.False(t, SameDay(evening, nextNight, time.UTC))

	// In UTC+5 both instants land on March 15
	assert.True(t, SameDay(evening, nextNight, almaty))
}

func TestDayAfter(t *testing.T) {
	endOfSprint := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	lateSameDay := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	assert.False(t, DayAfter(lateSameDay, endOfSprint, time.UTC))

	midnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, DayAfter(midnight, endOfSprint, time.UTC))

	before := time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
	assert.False(t, DayAfter(before, endOfSprint, time.UTC))
}
