package student

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

func TestNewStudent(t *testing.T) {
	s, err := NewStudent(NewStudentParams{FirstName: " Ann ", LastName: "Lee"})
	require.NoError(t, err)

	assert.Equal(t, "Ann", s.FirstName)
	assert.Equal(t, "Ann Lee", s.FullName())
	assert.True(t, s.IsActive())
	assert.False(t, s.CreatedAt.IsZero())
}

func TestNewStudent_Validation(t *testing.T) {
	_, err := NewStudent(NewStudentParams{FirstName: "", LastName: "Lee"})
	assert.True(t, errors.Is(err, shared.ErrEmptyValue))

	_, err = NewStudent(NewStudentParams{FirstName: "Ann", LastName: "L"})
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "last_name", de.Field)
	assert.True(t, shared.IsValidation(err))
}

func TestStudent_Rename(t *testing.T) {
	s, err := NewStudent(NewStudentParams{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)

	require.NoError(t, s.Rename("Anna", "Leeson"))
	assert.Equal(t, "Anna Leeson", s.FullName())

	assert.Error(t, s.Rename("A", "Leeson"))
	assert.Equal(t, "Anna", s.FirstName)
}
