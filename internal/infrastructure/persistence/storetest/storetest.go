// Package storetest is a conformance suite for enrollment.UnitOfWorkFactory
// implementations. Every store runs the same scenarios so that the in-memory
// store used by unit tests behaves like PostgreSQL.
package storetest

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
)

// Factory returns an empty store for one test.
type Factory func(t *testing.T) enrollment.UnitOfWorkFactory

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("StudentLifecycle", func(t *testing.T) { testStudentLifecycle(t, newStore(t)) })
	t.Run("CourseLifecycle", func(t *testing.T) { testCourseLifecycle(t, newStore(t)) })
	t.Run("EnrollmentUniqueness", func(t *testing.T) { testEnrollmentUniqueness(t, newStore(t)) })
	t.Run("ProgressUpdate", func(t *testing.T) { testProgressUpdate(t, newStore(t)) })
	t.Run("CountsAndReadModel", func(t *testing.T) { testCountsAndReadModel(t, newStore(t)) })
	t.Run("RollbackOnError", func(t *testing.T) { testRollbackOnError(t, newStore(t)) })
	t.Run("RollbackOnPanic", func(t *testing.T) { testRollbackOnPanic(t, newStore(t)) })
	t.Run("CancelledContext", func(t *testing.T) { testCancelledContext(t, newStore(t)) })
	t.Run("ReadOnlyRejectsWrites", func(t *testing.T) { testReadOnlyRejectsWrites(t, newStore(t)) })
}

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURES
// ══════════════════════════════════════════════════════════════════════════════

var baseStart = time.Date(2030, 9, 1, 9, 0, 0, 0, time.UTC)

func rw(t *testing.T, f enrollment.UnitOfWorkFactory, fn func(uow enrollment.UnitOfWork) error) {
	t.Helper()
	require.NoError(t, f.Run(context.Background(), enrollment.ReadWrite, fn))
}

func ro(t *testing.T, f enrollment.UnitOfWorkFactory, fn func(uow enrollment.UnitOfWork) error) {
	t.Helper()
	require.NoError(t, f.Run(context.Background(), enrollment.ReadOnlySnapshot, fn))
}

func addStudent(t *testing.T, f enrollment.UnitOfWorkFactory, first, last string) int64 {
	t.Helper()
	s, err := student.NewStudent(student.NewStudentParams{FirstName: first, LastName: last})
	require.NoError(t, err)
	rw(t, f, func(uow enrollment.UnitOfWork) error {
		return uow.Students().Create(context.Background(), s)
	})
	require.Positive(t, s.ID)
	return s.ID
}

func addCourse(t *testing.T, f enrollment.UnitOfWorkFactory, title string, start time.Time, cap int) int64 {
	t.Helper()
	c, err := course.NewCourse(course.Params{
		Title:         title,
		StartDate:     start,
		EndDate:       start.AddDate(0, 2, 0),
		EnrollmentCap: cap,
	})
	require.NoError(t, err)
	rw(t, f, func(uow enrollment.UnitOfWork) error {
		return uow.Courses().Create(context.Background(), c)
	})
	require.Positive(t, c.ID)
	return c.ID
}

func addEnrollment(t *testing.T, f enrollment.UnitOfWorkFactory, studentID, courseID int64) int64 {
	t.Helper()
	id, err := tryEnrollment(f, studentID, courseID)
	require.NoError(t, err)
	return id
}

func tryEnrollment(f enrollment.UnitOfWorkFactory, studentID, courseID int64) (int64, error) {
	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: baseStart.AddDate(0, 0, -7),
	})
	if err != nil {
		return 0, err
	}
	err = f.Run(context.Background(), enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		return uow.Enrollments().Create(context.Background(), e)
	})
	return e.ID, err
}

func softDelete(t *testing.T, f enrollment.UnitOfWorkFactory, kind shared.EntityKind, id int64) error {
	t.Helper()
	return f.Run(context.Background(), enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		ctx := context.Background()
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

// ══════════════════════════════════════════════════════════════════════════════
// SCENARIOS
// ══════════════════════════════════════════════════════════════════════════════

func testStudentLifecycle(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()
	a := addStudent(t, f, "Ada", "Lovelace")
	b := addStudent(t, f, "Alan", "Turing")
	assert.Greater(t, b, a)

	rw(t, f, func(uow enrollment.UnitOfWork) error {
		s, err := uow.Students().Get(ctx, a)
		if err != nil {
			return err
		}
		if err := s.Rename("Augusta", "King"); err != nil {
			return err
		}
		return uow.Students().Update(ctx, s)
	})

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		s, err := uow.Students().Get(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", s.FirstName)
		assert.Equal(t, "King", s.LastName)
		assert.False(t, s.Deleted)
		return nil
	})

	require.NoError(t, softDelete(t, f, shared.KindStudent, a))
	err := softDelete(t, f, shared.KindStudent, a)
	assert.True(t, shared.IsNotFound(err), "second delete must be NotFound, got %v", err)

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		_, err := uow.Students().Get(ctx, a)
		assert.True(t, shared.IsNotFound(err))

		list, err := uow.Students().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b, list[0].ID)
		return nil
	})

	err = f.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		return uow.Students().Update(ctx, &student.Student{ID: a, FirstName: "Xx", LastName: "Yy"})
	})
	assert.True(t, shared.IsNotFound(err))
}

func testCourseLifecycle(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()
	id := addCourse(t, f, "Compilers 101", baseStart, 10)

	rw(t, f, func(uow enrollment.UnitOfWork) error {
		c, err := uow.Courses().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		err = c.Revise(course.Params{
			Title:         "Compilers 102",
			StartDate:     baseStart.AddDate(0, 0, 1),
			EndDate:       baseStart.AddDate(0, 3, 0),
			EnrollmentCap: 20,
		}, 0)
		if err != nil {
			return err
		}
		return uow.Courses().Update(ctx, c)
	})

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		c, err := uow.Courses().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Compilers 102", c.Title)
		assert.True(t, c.StartDate.Equal(baseStart.AddDate(0, 0, 1)))
		assert.True(t, c.EndDate.Equal(baseStart.AddDate(0, 3, 0)))
		assert.Equal(t, 20, c.EnrollmentCap)
		return nil
	})

	require.NoError(t, softDelete(t, f, shared.KindCourse, id))
	assert.True(t, shared.IsNotFound(softDelete(t, f, shared.KindCourse, id)))

	err := f.Run(ctx, enrollment.ReadOnlySnapshot, func(uow enrollment.UnitOfWork) error {
		_, err := uow.Courses().Get(ctx, id)
		return err
	})
	assert.True(t, shared.IsNotFound(err))
}

func testEnrollmentUniqueness(t *testing.T, f enrollment.UnitOfWorkFactory) {
	s := addStudent(t, f, "Grace", "Hopper")
	c := addCourse(t, f, "Databases", baseStart, 5)

	first := addEnrollment(t, f, s, c)

	_, err := tryEnrollment(f, s, c)
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))
	assert.True(t, errors.Is(err, shared.ErrAlreadyEnrolled))

	require.NoError(t, softDelete(t, f, shared.KindEnrollment, first))
	assert.True(t, shared.IsNotFound(softDelete(t, f, shared.KindEnrollment, first)))

	// Удалённая запись не мешает записаться снова.
	second := addEnrollment(t, f, s, c)
	assert.NotEqual(t, first, second)

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().Get(context.Background(), second)
		require.NoError(t, err)
		assert.Equal(t, s, e.StudentID)
		assert.Equal(t, c, e.CourseID)
		assert.Equal(t, shared.Progress(0), e.Progress)
		assert.False(t, e.Completed)

		_, err = uow.Enrollments().Get(context.Background(), first)
		assert.True(t, shared.IsNotFound(err))
		return nil
	})
}

func testProgressUpdate(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()
	s := addStudent(t, f, "Edsger", "Dijkstra")
	c := addCourse(t, f, "Algorithms", baseStart, 5)
	id := addEnrollment(t, f, s, c)

	rw(t, f, func(uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().FindActive(ctx, s, c)
		if err != nil {
			return err
		}
		e.SetProgress(100)
		return uow.Enrollments().UpdateProgress(ctx, e)
	})

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, shared.Progress(100), e.Progress)
		assert.True(t, e.Completed)
		return nil
	})

	err := f.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		_, err := uow.Enrollments().FindActive(ctx, s, c+1000)
		return err
	})
	assert.True(t, shared.IsNotFound(err))
}

func testCountsAndReadModel(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()
	alice := addStudent(t, f, "Alice", "Zephyr")
	bob := addStudent(t, f, "Bob", "Young")
	carol := addStudent(t, f, "Carol", "Young")

	late := addCourse(t, f, "Late Course", baseStart.AddDate(0, 1, 0), 5)
	early := addCourse(t, f, "Early Course", baseStart, 5)

	addEnrollment(t, f, alice, early)
	addEnrollment(t, f, bob, early)
	addEnrollment(t, f, carol, early)
	addEnrollment(t, f, alice, late)

	require.NoError(t, softDelete(t, f, shared.KindStudent, carol))

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		// Счётчик для приёма учитывает записи удалённых студентов.
		n, err := uow.Enrollments().CountActiveByCourse(ctx, early)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = uow.Views().EnrolledCountByCourse(ctx, early)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		counts, err := uow.Views().EnrolledCountsByCourse(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, counts[early])
		assert.Equal(t, 1, counts[late])

		students, err := uow.Views().StudentsOfCourse(ctx, early)
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, bob, students[0].ID)
		assert.Equal(t, alice, students[1].ID)

		courses, err := uow.Views().CoursesOfStudent(ctx, alice)
		require.NoError(t, err)
		require.Len(t, courses, 2)
		assert.Equal(t, early, courses[0].ID)
		assert.Equal(t, late, courses[1].ID)
		return nil
	})

	require.NoError(t, softDelete(t, f, shared.KindCourse, late))

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		n, err := uow.Views().CourseCountByStudent(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		counts, err := uow.Views().CourseCountsByStudent(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[alice])
		assert.Equal(t, 1, counts[bob])

		// Записи не каскадируются: они остаются активными.
		list, err := uow.Enrollments().List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 4)
		return nil
	})
}

func testRollbackOnError(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		s, err := student.NewStudent(student.NewStudentParams{FirstName: "Linus", LastName: "Torvalds"})
		if err != nil {
			return err
		}
		if err := uow.Students().Create(ctx, s); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		list, err := uow.Students().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
}

func testRollbackOnPanic(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = f.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
			s, err := student.NewStudent(student.NewStudentParams{FirstName: "Ken", LastName: "Thompson"})
			if err != nil {
				return err
			}
			if err := uow.Students().Create(ctx, s); err != nil {
				return err
			}
			panic("mid-transaction")
		})
	})

	// Хранилище остаётся доступным и пустым.
	ro(t, f, func(uow enrollment.UnitOfWork) error {
		list, err := uow.Students().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
	addStudent(t, f, "Rob", "Pike")
}

func testCancelledContext(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		s, err := student.NewStudent(student.NewStudentParams{FirstName: "Dennis", LastName: "Ritchie"})
		if err != nil {
			return err
		}
		return uow.Students().Create(ctx, s)
	})
	require.Error(t, err)

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		list, err := uow.Students().List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
}

func testReadOnlyRejectsWrites(t *testing.T, f enrollment.UnitOfWorkFactory) {
	ctx := context.Background()

	err := f.Run(ctx, enrollment.ReadOnlySnapshot, func(uow enrollment.UnitOfWork) error {
		s, err := student.NewStudent(student.NewStudentParams{FirstName: "Barbara", LastName: "Liskov"})
		if err != nil {
			return err
		}
		return uow.Students().Create(ctx, s)
	})
	require.Error(t, err)

	ro(t, f, func(uow enrollment.UnitOfWork) error {
		list, err := uow.Students().List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		return nil
	})
}
