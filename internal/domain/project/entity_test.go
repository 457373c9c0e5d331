package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSprint_Defaults(t *testing.T) {
	s, err := NewSprint(NewSprintParams{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, SprintInProgress, s.State)
	assert.False(t, s.IsCompleted())
}

func TestNewSprint_CreatedCompleted(t *testing.T) {
	// A sprint may be registered after the fact, already completed
	s, err := NewSprint(NewSprintParams{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		State:     SprintCompleted,
	})
	require.NoError(t, err)
	assert.True(t, s.IsCompleted())
}

func TestNewSprint_DatesInverted(t *testing.T) {
	_, err := NewSprint(NewSprintParams{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrDatesInverted)
}

func TestNewSprint_SingleDay(t *testing.T) {
	// Start == end is a valid one-day sprint
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewSprint(NewSprintParams{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Sprint 1",
		StartDate: day,
		EndDate:   day,
	})
	assert.NoError(t, err)
}

func TestNewSprint_InvalidState(t *testing.T) {
	_, err := NewSprint(NewSprintParams{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		State:     SprintState("CANCELLED"),
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSprint_Complete(t *testing.T) {
	s, err := NewSprint(NewSprintParams{
		ID:        "s1",
		ProjectID: "p1",
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, s.Complete())
	assert.True(t, s.IsCompleted())

	// Completing twice is a state transition error
	assert.ErrorIs(t, s.Complete(), ErrAlreadyCompleted)
}

func TestNewProject_Validation(t *testing.T) {
	p, err := NewProject("p1", "subj1", "  Rocket Science  ")
	require.NoError(t, err)
	assert.Equal(t, "Rocket Science", p.Name)

	_, err = NewProject("p1", "subj1", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}
