package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_MatchesKindAndReason(t *testing.T) {
	err := Conflict("enrollment", "Enroll", ErrCourseFull)

	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrCourseFull))
	assert.False(t, errors.Is(err, ErrAlreadyEnrolled))
	assert.True(t, IsConflict(err))
	assert.True(t, IsDomain(err))
	assert.Equal(t, "enrollment.Enroll: course enrollment capacity reached", err.Error())
}

func TestDomainError_WrappedStillMatches(t *testing.T) {
	inner := NotFound("student", "Get", 42)
	err := fmt.Errorf("load student: %w", inner)

	assert.True(t, IsNotFound(err))

	de, ok := AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, int64(42), de.ID)
	assert.Equal(t, "student", de.Domain)
}

func TestInternal_IsNotDomain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("course", "Get", cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsDomain(err))
	assert.Equal(t, "internal error", err.Message)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("tx: %w", ErrConcurrentModification)))
	assert.False(t, IsRetryable(Conflict("enrollment", "Enroll", ErrAlreadyEnrolled)))
}
