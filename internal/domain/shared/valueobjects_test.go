package shared

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgress_Boundaries(t *testing.T) {
	tests := []struct {
		value int
		ok    bool
	}{
		{-1, false},
		{0, true},
		{55, true},
		{100, true},
		{101, false},
	}

	for _, tt := range tests {
		p, err := NewProgress(tt.value)
		if tt.ok {
			require.NoError(t, err, "value %d", tt.value)
			assert.Equal(t, tt.value, p.Int())
			continue
		}
		require.Error(t, err, "value %d", tt.value)
		assert.True(t, IsValidation(err))
		assert.True(t, errors.Is(err, ErrProgressRange))
	}
}

func TestProgress_IsComplete(t *testing.T) {
	assert.True(t, Progress(100).IsComplete())
	assert.False(t, Progress(99).IsComplete())
	assert.False(t, Progress(0).IsComplete())
}

func TestParseEntityKind(t *testing.T) {
	for in, want := range map[string]EntityKind{
		"student":     KindStudent,
		"Students":    KindStudent,
		"courses":     KindCourse,
		" enrollment": KindEnrollment,
	} {
		got, err := ParseEntityKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseEntityKind("instructor")
	assert.True(t, errors.Is(err, ErrUnknownEntityKind))
}

func TestNormalizeText(t *testing.T) {
	v, err := NormalizeText("student", "Create", "first_name", "  Ann  ", MinNameLength, MaxNameLength)
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)

	_, err = NormalizeText("student", "Create", "first_name", "   ", MinNameLength, MaxNameLength)
	assert.True(t, errors.Is(err, ErrEmptyValue))

	_, err = NormalizeText("student", "Create", "first_name", "A", MinNameLength, MaxNameLength)
	assert.True(t, errors.Is(err, ErrInvalidLength))

	_, err = NormalizeText("student", "Create", "first_name", strings.Repeat("я", 101), MinNameLength, MaxNameLength)
	assert.True(t, errors.Is(err, ErrInvalidLength))

	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "first_name", de.Field)
}

func TestNewDateRange(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewDateRange("course", "Create", start, start.AddDate(0, 3, 0))
	assert.NoError(t, err)

	_, err = NewDateRange("course", "Create", start, start)
	assert.True(t, errors.Is(err, ErrInvalidDateRange))

	_, err = NewDateRange("course", "Create", start, start.Add(-time.Hour))
	assert.True(t, IsValidation(err))
}

func TestValidateEnrollmentCap(t *testing.T) {
	assert.NoError(t, ValidateEnrollmentCap("course", "Create", 1))
	assert.NoError(t, ValidateEnrollmentCap("course", "Create", 100))
	assert.True(t, IsValidation(ValidateEnrollmentCap("course", "Create", 0)))
	assert.True(t, IsValidation(ValidateEnrollmentCap("course", "Create", 101)))
}
