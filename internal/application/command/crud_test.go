package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

func TestCreateStudent(t *testing.T) {
	f := newFixture(t)

	res, err := f.students.Handle(context.Background(), CreateStudentCommand{FirstName: "  Ada ", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Positive(t, res.StudentID)
	assert.Equal(t, "Ada", res.Student.FirstName)
	assert.Equal(t, shared.EventStudentCreated, f.events.last().EventType())

	_, err = f.students.Handle(context.Background(), CreateStudentCommand{FirstName: "A", LastName: "Lovelace"})
	assert.True(t, shared.IsValidation(err))
}

func TestUpdateStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := NewUpdateStudentHandler(f.store, f.events)
	id := f.student(t, "Ada", "Lovelace")

	s, err := h.Handle(ctx, UpdateStudentCommand{StudentID: id, FirstName: "Augusta", LastName: "King"})
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", s.FullName())
	assert.Equal(t, shared.EventStudentUpdated, f.events.last().EventType())

	_, err = h.Handle(ctx, UpdateStudentCommand{StudentID: 404, FirstName: "Augusta", LastName: "King"})
	assert.True(t, shared.IsNotFound(err))
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.courses.Handle(context.Background(), CreateCourseCommand{
		Title:         "Backwards Course",
		StartDate:     courseStart,
		EndDate:       courseStart,
		EnrollmentCap: 5,
	})
	assert.True(t, shared.IsValidation(err))
	assert.True(t, errors.Is(err, shared.ErrInvalidDateRange))

	_, err = f.courses.Handle(context.Background(), CreateCourseCommand{
		Title:         "Zero Seat Course",
		StartDate:     courseStart,
		EndDate:       courseStart.AddDate(0, 1, 0),
		EnrollmentCap: 0,
	})
	assert.True(t, shared.IsValidation(err))
}

func TestUpdateCourse_CapBelowEnrolled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := NewUpdateCourseHandler(f.store, f.events)

	c := f.course(t, "Analytical Engines", 3)
	f.enrolled(t, f.student(t, "Ada", "Lovelace"), c)
	f.enrolled(t, f.student(t, "Alan", "Turing"), c)

	cmd := UpdateCourseCommand{
		CourseID:      c,
		Title:         "Analytical Engines II",
		StartDate:     courseStart,
		EndDate:       courseStart.AddDate(0, 4, 0),
		EnrollmentCap: 1,
	}
	_, err := h.Handle(ctx, cmd)
	assert.True(t, shared.IsConflict(err))
	assert.True(t, errors.Is(err, shared.ErrCapBelowEnrolled))

	cmd.EnrollmentCap = 2
	updated, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.EnrollmentCap)
	assert.Equal(t, "Analytical Engines II", updated.Title)
	assert.Equal(t, shared.EventCourseUpdated, f.events.last().EventType())

	cmd.CourseID = 999
	_, err = h.Handle(ctx, cmd)
	assert.True(t, shared.IsNotFound(err))
}
