package query

import (
	"context"
	"testing"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseRankingStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	c, err := course.NewCourse("course-1", "Physics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateCourse(ctx, c))

	seedStudents(t, store, map[string]int{"stud-1": 40, "stud-2": 10, "stud-3": 70})

	// stud-3 is the top student globally but is not enrolled
	for i, id := range []string{"stud-1", "stud-2"} {
		enr, err := course.NewEnrollment("enr-"+string(rune('a'+i)), "course-1", id)
		require.NoError(t, err)
		require.NoError(t, store.Courses().Enroll(ctx, enr))
	}

	return store
}

func TestGetCourseRanking_OnlyEnrolledStudents(t *testing.T) {
	store := newCourseRankingStore(t)
	handler := NewGetCourseRankingHandler(store.Users(), store.Courses())

	res, err := handler.Handle(context.Background(), GetCourseRankingQuery{CourseID: "course-1"})
	require.NoError(t, err)

	assert.Equal(t, "Physics", res.CourseName)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "stud-1", res.Entries[0].StudentID)
	assert.Equal(t, 40, res.Entries[0].TotalPoints)
	assert.Equal(t, "stud-2", res.Entries[1].StudentID)
}

func TestGetCourseRanking_Limit(t *testing.T) {
	store := newCourseRankingStore(t)
	handler := NewGetCourseRankingHandler(store.Users(), store.Courses())

	res, err := handler.Handle(context.Background(), GetCourseRankingQuery{CourseID: "course-1", Limit: 1})
	require.NoError(t, err)

	assert.Len(t, res.Entries, 1)
	assert.Equal(t, 2, res.TotalCount)
}

func TestGetCourseRanking_CourseNotFound(t *testing.T) {
	store := newCourseRankingStore(t)
	handler := NewGetCourseRankingHandler(store.Users(), store.Courses())

	_, err := handler.Handle(context.Background(), GetCourseRankingQuery{CourseID: "no-such-course"})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

func TestGetCourseRanking_MissingCourseID(t *testing.T) {
	store := newCourseRankingStore(t)
	handler := NewGetCourseRankingHandler(store.Users(), store.Courses())

	_, err := handler.Handle(context.Background(), GetCourseRankingQuery{})
	assert.Error(t, err)
}
