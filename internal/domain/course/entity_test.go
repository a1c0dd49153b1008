package course

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

var start = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func validParams() Params {
	return Params{
		Title:         "Algorithms in Go",
		StartDate:     start,
		EndDate:       start.AddDate(0, 2, 0),
		EnrollmentCap: 3,
	}
}

func TestNewCourse(t *testing.T) {
	c, err := NewCourse(validParams())
	require.NoError(t, err)

	assert.Equal(t, "Algorithms in Go", c.Title)
	assert.Equal(t, 3, c.EnrollmentCap)
	assert.True(t, c.IsActive())
	assert.Zero(t, c.ID)
}

func TestNewCourse_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		reason error
	}{
		{"short title", func(p *Params) { p.Title = "Go" }, shared.ErrInvalidLength},
		{"end equals start", func(p *Params) { p.EndDate = p.StartDate }, shared.ErrInvalidDateRange},
		{"end before start", func(p *Params) { p.EndDate = p.StartDate.Add(-time.Hour) }, shared.ErrInvalidDateRange},
		{"zero cap", func(p *Params) { p.EnrollmentCap = 0 }, shared.ErrValueOutOfRange},
		{"cap too large", func(p *Params) { p.EnrollmentCap = 101 }, shared.ErrValueOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			_, err := NewCourse(p)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			assert.True(t, errors.Is(err, tt.reason))
		})
	}
}

func TestCourse_AcceptsEnrollmentOn(t *testing.T) {
	c, err := NewCourse(validParams())
	require.NoError(t, err)

	assert.True(t, c.AcceptsEnrollmentOn(start.Add(-24*time.Hour)))
	assert.True(t, c.AcceptsEnrollmentOn(start))
	assert.False(t, c.AcceptsEnrollmentOn(start.Add(time.Second)))
}

func TestCourse_Revise(t *testing.T) {
	c, err := NewCourse(validParams())
	require.NoError(t, err)

	p := validParams()
	p.EnrollmentCap = 2
	err = c.Revise(p, 3)
	assert.True(t, shared.IsConflict(err))
	assert.True(t, errors.Is(err, shared.ErrCapBelowEnrolled))
	assert.Equal(t, 3, c.EnrollmentCap)

	p.Title = "  Advanced Algorithms  "
	p.EnrollmentCap = 5
	require.NoError(t, c.Revise(p, 3))
	assert.Equal(t, "Advanced Algorithms", c.Title)
	assert.Equal(t, 5, c.EnrollmentCap)
}
