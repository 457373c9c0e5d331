package query

import (
	"context"
	"testing"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	c, err := course.NewCourse("course-1", "Physics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateCourse(ctx, c))

	subj, err := course.NewSubject("subj-1", c.ID, "Mechanics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateSubject(ctx, subj))

	prizes := []struct {
		id, name string
		value    int
		kind     prize.Kind
	}{
		{"prize-1", "Best Demo", 15, prize.KindManual},
		{"prize-2", "Light Speed", 10, prize.KindAutomatic},
		{"prize-3", "Team Spirit", 5, prize.KindManual},
	}
	for _, p := range prizes {
		created, err := prize.NewPrize(prize.NewPrizeParams{
			ID:        p.id,
			SubjectID: subj.ID,
			Name:      p.name,
			Value:     shared.Points(p.value),
			Kind:      p.kind,
		})
		require.NoError(t, err)
		require.NoError(t, store.Prizes().Create(ctx, created))
	}

	return store
}

func TestListPrizes_CreationOrder(t *testing.T) {
	store := newCatalogStore(t)
	handler := NewListPrizesHandler(store.Prizes(), store.Courses())

	res, err := handler.Handle(context.Background(), ListPrizesQuery{SubjectID: "subj-1"})
	require.NoError(t, err)

	require.Len(t, res.Prizes, 3)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "Best Demo", res.Prizes[0].Name)
	assert.Equal(t, "Light Speed", res.Prizes[1].Name)
	assert.Equal(t, "Team Spirit", res.Prizes[2].Name)
}

func TestListPrizes_FilterByKind(t *testing.T) {
	store := newCatalogStore(t)
	handler := NewListPrizesHandler(store.Prizes(), store.Courses())
	ctx := context.Background()

	manual, err := handler.Handle(ctx, ListPrizesQuery{SubjectID: "subj-1", Kind: prize.KindManual})
	require.NoError(t, err)
	assert.Len(t, manual.Prizes, 2)

	auto, err := handler.Handle(ctx, ListPrizesQuery{SubjectID: "subj-1", Kind: prize.KindAutomatic})
	require.NoError(t, err)
	require.Len(t, auto.Prizes, 1)
	assert.Equal(t, "Light Speed", auto.Prizes[0].Name)
}

func TestListPrizes_SubjectNotFound(t *testing.T) {
	store := newCatalogStore(t)
	handler := NewListPrizesHandler(store.Prizes(), store.Courses())

	_, err := handler.Handle(context.Background(), ListPrizesQuery{SubjectID: "no-such-subject"})
	assert.ErrorIs(t, err, shared.ErrSubjectNotFound)
}

func TestListPrizes_InvalidKind(t *testing.T) {
	store := newCatalogStore(t)
	handler := NewListPrizesHandler(store.Prizes(), store.Courses())

	_, err := handler.Handle(context.Background(), ListPrizesQuery{SubjectID: "subj-1", Kind: "WEEKLY"})
	assert.Error(t, err)
}
