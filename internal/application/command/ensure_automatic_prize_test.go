package command

import (
	"context"
	"testing"

	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAutomaticPrize_CreatesOnFirstCall(t *testing.T) {
	store := memory.NewStore()
	handler := NewEnsureAutomaticPrizeHandler(store.Prizes())

	res, err := handler.Handle(context.Background(), EnsureAutomaticPrizeCommand{
		SubjectID:   "subj-1",
		Name:        "Light Speed",
		Value:       10,
		Description: "Sprint completed on schedule",
	})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "Light Speed", res.Prize.Name)
	assert.Equal(t, prize.KindAutomatic, res.Prize.Kind)
}

func TestEnsureAutomaticPrize_Idempotent(t *testing.T) {
	store := memory.NewStore()
	handler := NewEnsureAutomaticPrizeHandler(store.Prizes())
	ctx := context.Background()
	cmd := EnsureAutomaticPrizeCommand{SubjectID: "subj-1", Name: "Light Speed", Value: 10}

	first, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	second, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Equal(t, first.Prize.ID, second.Prize.ID)

	prizes, err := store.Prizes().ListBySubject(ctx, "subj-1")
	require.NoError(t, err)
	assert.Len(t, prizes, 1)
}

func TestEnsureAutomaticPrize_DistinctKeys(t *testing.T) {
	store := memory.NewStore()
	handler := NewEnsureAutomaticPrizeHandler(store.Prizes())
	ctx := context.Background()

	_, err := handler.Handle(ctx, EnsureAutomaticPrizeCommand{SubjectID: "subj-1", Name: "Light Speed", Value: 10})
	require.NoError(t, err)

	// Same name but different value is a different prize
	res, err := handler.Handle(ctx, EnsureAutomaticPrizeCommand{SubjectID: "subj-1", Name: "Light Speed", Value: 20})
	require.NoError(t, err)
	assert.True(t, res.Created)

	// Same key in another subject is also a different prize
	res, err = handler.Handle(ctx, EnsureAutomaticPrizeCommand{SubjectID: "subj-2", Name: "Light Speed", Value: 10})
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestEnsureAutomaticPrize_Validation(t *testing.T) {
	store := memory.NewStore()
	handler := NewEnsureAutomaticPrizeHandler(store.Prizes())
	ctx := context.Background()

	_, err := handler.Handle(ctx, EnsureAutomaticPrizeCommand{Name: "X", Value: 10})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(ctx, EnsureAutomaticPrizeCommand{SubjectID: "subj-1", Name: "", Value: 10})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(ctx, EnsureAutomaticPrizeCommand{SubjectID: "subj-1", Name: "X", Value: -1})
	assert.ErrorIs(t, err, shared.ErrPrizeValueNegative)
}
