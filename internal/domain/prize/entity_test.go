package prize

import (
	"testing"

	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrize_Valid(t *testing.T) {
	p, err := NewPrize(NewPrizeParams{
		ID:          "pr1",
		SubjectID:   "subj1",
		Name:        " Light Speed ",
		Description: "Sprint completed on schedule",
		Value:       shared.Points(10),
		Kind:        KindAutomatic,
	})
	require.NoError(t, err)

	assert.Equal(t, "Light Speed", p.Name)
	assert.Equal(t, 10, p.Value.Int())
	assert.True(t, p.IsAutomatic())
}

func TestNewPrize_ZeroValue(t *testing.T) {
	// Honorary prizes worth nothing are allowed
	p, err := NewPrize(NewPrizeParams{
		ID:        "pr1",
		SubjectID: "subj1",
		Name:      "Participation",
		Value:     shared.Points(0),
		Kind:      KindManual,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Value.Int())
}

func TestNewPrize_Invalid(t *testing.T) {
	_, err := NewPrize(NewPrizeParams{ID: "pr1", SubjectID: "subj1", Name: "", Value: 10, Kind: KindManual})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewPrize(NewPrizeParams{ID: "pr1", SubjectID: "subj1", Name: "X", Value: -1, Kind: KindManual})
	assert.ErrorIs(t, err, ErrNegativeValue)

	_, err = NewPrize(NewPrizeParams{ID: "pr1", SubjectID: "subj1", Name: "X", Value: 10, Kind: Kind("WEEKLY")})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestPrize_Matches(t *testing.T) {
	p, err := NewPrize(NewPrizeParams{
		ID:        "pr1",
		SubjectID: "subj1",
		Name:      "Light Speed",
		Value:     shared.Points(10),
		Kind:      KindAutomatic,
	})
	require.NoError(t, err)

	assert.True(t, p.Matches("Light Speed", 10))
	assert.False(t, p.Matches("Light Speed", 15))
	assert.False(t, p.Matches("Slow Burn", 10))
}
