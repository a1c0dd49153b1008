package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/persistence/memory"
)

var start = time.Date(2031, 2, 1, 9, 0, 0, 0, time.UTC)

type seed struct {
	t     *testing.T
	store *memory.Store
}

func (s seed) write(fn func(ctx context.Context, uow enrollment.UnitOfWork) error) {
	s.t.Helper()
	ctx := context.Background()
	require.NoError(s.t, s.store.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		return fn(ctx, uow)
	}))
}

func (s seed) student(first, last string) int64 {
	st, err := student.NewStudent(student.NewStudentParams{FirstName: first, LastName: last})
	require.NoError(s.t, err)
	s.write(func(ctx context.Context, uow enrollment.UnitOfWork) error { return uow.Students().Create(ctx, st) })
	return st.ID
}

func (s seed) course(title string, begin time.Time, cap int) int64 {
	c, err := course.NewCourse(course.Params{Title: title, StartDate: begin, EndDate: begin.AddDate(0, 1, 0), EnrollmentCap: cap})
	require.NoError(s.t, err)
	s.write(func(ctx context.Context, uow enrollment.UnitOfWork) error { return uow.Courses().Create(ctx, c) })
	return c.ID
}

func (s seed) enroll(studentID, courseID int64, progress int) int64 {
	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{StudentID: studentID, CourseID: courseID, EnrollmentDate: start})
	require.NoError(s.t, err)
	p, err := shared.NewProgress(progress)
	require.NoError(s.t, err)
	e.SetProgress(p)
	s.write(func(ctx context.Context, uow enrollment.UnitOfWork) error { return uow.Enrollments().Create(ctx, e) })
	return e.ID
}

func (s seed) remove(kind shared.EntityKind, id int64) {
	s.write(func(ctx context.Context, uow enrollment.UnitOfWork) error {
		switch kind {
		case shared.KindStudent:
			return uow.Students().SoftDelete(ctx, id)
		case shared.KindCourse:
			return uow.Courses().SoftDelete(ctx, id)
		default:
			return uow.Enrollments().SoftDelete(ctx, id)
		}
	})
}

func newSeed(t *testing.T) (seed, *Projector) {
	store := memory.NewStore()
	return seed{t: t, store: store}, NewProjector(store)
}

func TestCourseView_RoundTrip(t *testing.T) {
	s, p := newSeed(t)
	c := s.course("Operating Systems", start, 30)

	view, err := p.CourseView(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c, view.ID)
	assert.Equal(t, "Operating Systems", view.Title)
	assert.True(t, start.Equal(view.StartDate))
	assert.True(t, start.AddDate(0, 1, 0).Equal(view.EndDate))
	assert.Equal(t, 30, view.EnrollmentCap)
	assert.Equal(t, 0, view.EnrolledCount)
}

func TestCourseView_ExcludesDeletedStudents(t *testing.T) {
	s, p := newSeed(t)
	ctx := context.Background()
	c := s.course("Operating Systems", start, 30)
	a := s.student("Alice", "Archer")
	b := s.student("Bob", "Baker")
	s.enroll(a, c, 0)
	e := s.enroll(b, c, 0)

	view, err := p.CourseView(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, view.EnrolledCount)

	s.remove(shared.KindStudent, a)
	view, err = p.CourseView(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 1, view.EnrolledCount)

	s.remove(shared.KindEnrollment, e)
	list, err := p.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].EnrolledCount)

	s.remove(shared.KindCourse, c)
	_, err = p.CourseView(ctx, c)
	assert.True(t, shared.IsNotFound(err))

	list, err = p.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStudentView_ExcludesDeletedCourses(t *testing.T) {
	s, p := newSeed(t)
	ctx := context.Background()
	a := s.student("Alice", "Archer")
	b := s.student("Bob", "Baker")
	c1 := s.course("Operating Systems", start, 30)
	c2 := s.course("Computer Networks", start, 30)
	s.enroll(a, c1, 0)
	s.enroll(a, c2, 0)

	s.remove(shared.KindCourse, c2)

	view, err := p.StudentView(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.FirstName)
	assert.Equal(t, 1, view.EnrolledCoursesCount)

	list, err := p.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, 1, list[0].EnrolledCoursesCount)
	assert.Equal(t, b, list[1].ID)
	assert.Equal(t, 0, list[1].EnrolledCoursesCount)

	_, err = p.StudentView(ctx, 999)
	assert.True(t, shared.IsNotFound(err))
}

func TestRosters(t *testing.T) {
	s, p := newSeed(t)
	ctx := context.Background()
	a := s.student("Alice", "Zephyr")
	b := s.student("Bob", "Young")
	later := s.course("Computer Networks", start.AddDate(0, 2, 0), 30)
	earlier := s.course("Operating Systems", start, 30)
	s.enroll(a, later, 0)
	s.enroll(a, earlier, 0)
	s.enroll(b, earlier, 0)

	courses, err := p.StudentCourses(ctx, a)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Operating Systems", courses[0].Title)
	assert.Equal(t, "Computer Networks", courses[1].Title)

	students, err := p.CourseStudents(ctx, earlier)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Young", students[0].LastName)
	assert.Equal(t, "Zephyr", students[1].LastName)

	s.remove(shared.KindStudent, b)
	students, err = p.CourseStudents(ctx, earlier)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, a, students[0].StudentID)

	_, err = p.StudentCourses(ctx, b)
	assert.True(t, shared.IsNotFound(err))
	_, err = p.CourseStudents(ctx, 999)
	assert.True(t, shared.IsNotFound(err))
}

// Сценарий: завершение курса не убирает связь студент/курс.
func TestRosters_CompletionKeepsRelationship(t *testing.T) {
	s, p := newSeed(t)
	ctx := context.Background()
	a := s.student("Alice", "Archer")
	c := s.course("Operating Systems", start, 30)
	id := s.enroll(a, c, 40)

	s.write(func(ctx context.Context, uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		e.SetProgress(100)
		return uow.Enrollments().UpdateProgress(ctx, e)
	})

	view, err := p.GetEnrollment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100, view.Progress)
	assert.True(t, view.Completed)

	courses, err := p.StudentCourses(ctx, a)
	require.NoError(t, err)
	assert.Len(t, courses, 1)

	students, err := p.CourseStudents(ctx, c)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestEnrollmentViews(t *testing.T) {
	s, p := newSeed(t)
	ctx := context.Background()
	a := s.student("Alice", "Archer")
	c := s.course("Operating Systems", start, 30)
	e1 := s.enroll(a, c, 10)
	s.remove(shared.KindEnrollment, e1)
	e2 := s.enroll(a, c, 0)

	list, err := p.ListEnrollments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e2, list[0].ID)

	_, err = p.GetEnrollment(ctx, e1)
	assert.True(t, shared.IsNotFound(err))

	for _, id := range []int64{0, -1} {
		_, err = p.GetEnrollment(ctx, id)
		assert.True(t, shared.IsNotFound(err), "enrollment %d: %v", id, err)
		_, err = p.CourseView(ctx, id)
		assert.True(t, shared.IsNotFound(err), "course %d: %v", id, err)
		_, err = p.StudentView(ctx, id)
		assert.True(t, shared.IsNotFound(err), "student %d: %v", id, err)
		_, err = p.StudentCourses(ctx, id)
		assert.True(t, shared.IsNotFound(err), "student roster %d: %v", id, err)
		_, err = p.CourseStudents(ctx, id)
		assert.True(t, shared.IsNotFound(err), "course roster %d: %v", id, err)
	}
}

type failingStore struct{ err error }

func (f failingStore) Run(context.Context, enrollment.TxMode, func(enrollment.UnitOfWork) error) error {
	return f.err
}

func TestProjector_StoreFailureIsInternal(t *testing.T) {
	boom := errors.New("connection refused")
	p := NewProjector(failingStore{err: boom})

	_, err := p.ListCourses(context.Background())
	assert.True(t, errors.Is(err, shared.ErrInternal))
	assert.True(t, errors.Is(err, boom))
}
