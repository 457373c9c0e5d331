package user

import (
	"testing"

	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_Valid(t *testing.T) {
	u, err := NewUser(NewUserParams{
		ID:    "u1",
		Name:  "  Aida Bekova  ",
		Email: "Aida@Example.COM",
		Role:  RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Aida Bekova", u.Name)
	assert.Equal(t, "aida@example.com", u.Email)
	assert.Equal(t, RoleStudent, u.Role)
	assert.Equal(t, 0, u.TotalPoints.Int())
}

func TestNewUser_Invalid(t *testing.T) {
	_, err := NewUser(NewUserParams{ID: "u1", Name: "", Email: "a@b.c", Role: RoleStudent})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewUser(NewUserParams{ID: "u1", Name: "Aida", Email: "not-an-email", Role: RoleStudent})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewUser(NewUserParams{ID: "u1", Name: "Aida", Email: "a@b.c", Role: Role("TEACHER")})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUser_AddPoints(t *testing.T) {
	u, err := NewUser(NewUserParams{ID: "u1", Name: "Aida", Email: "a@b.c", Role: RoleStudent})
	require.NoError(t, err)

	require.NoError(t, u.AddPoints(10))
	require.NoError(t, u.AddPoints(25))
	assert.Equal(t, 35, u.TotalPoints.Int())

	assert.ErrorIs(t, u.AddPoints(-5), ErrNegativePoints)
}

func TestUser_AddPoints_OnlyStudents(t *testing.T) {
	prof, err := NewUser(NewUserParams{ID: "p1", Name: "Prof", Email: "p@b.c", Role: RoleProfessor})
	require.NoError(t, err)

	assert.ErrorIs(t, prof.AddPoints(10), ErrNotAStudent)
	assert.False(t, prof.IsStudent())
}

func TestUser_SetTotalPoints(t *testing.T) {
	u, err := NewUser(NewUserParams{ID: "u1", Name: "Aida", Email: "a@b.c", Role: RoleStudent})
	require.NoError(t, err)

	require.NoError(t, u.SetTotalPoints(shared.Points(40)))
	assert.Equal(t, 40, u.TotalPoints.Int())

	assert.ErrorIs(t, u.SetTotalPoints(shared.Points(-1)), ErrNegativePoints)
}

func TestUser_Password(t *testing.T) {
	u, err := NewUser(NewUserParams{
		ID:       "u1",
		Name:     "Aida",
		Email:    "a@b.c",
		Password: "correct horse",
		Role:     RoleStudent,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.True(t, u.CheckPassword("correct horse"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestUser_PasswordTooShort(t *testing.T) {
	_, err := NewUser(NewUserParams{
		ID:       "u1",
		Name:     "Aida",
		Email:    "a@b.c",
		Password: "short",
		Role:     RoleStudent,
	})
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestUser_Clone(t *testing.T) {
	u, err := NewUser(NewUserParams{ID: "u1", Name: "Aida", Email: "a@b.c", Role: RoleStudent})
	require.NoError(t, err)

	clone := u.Clone()
	require.NoError(t, clone.AddPoints(10))

	assert.Equal(t, 0, u.TotalPoints.Int())
	assert.Equal(t, 10, clone.TotalPoints.Int())
}
