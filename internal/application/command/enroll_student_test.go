package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

func TestEnrollStudent_Success(t *testing.T) {
	f := newFixture(t)
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Analytical Engines", 2)

	date := courseStart.AddDate(0, 0, -3)
	res, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID:      s,
		CourseID:       c,
		EnrollmentDate: date,
		CorrelationID:  "req-1",
	})
	require.NoError(t, err)

	assert.Positive(t, res.EnrollmentID)
	assert.Equal(t, 1, res.Attempts)
	assert.True(t, date.Equal(res.EnrollmentDate))

	ev, ok := f.events.last().(shared.EnrollmentCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, s, ev.StudentID)
	assert.Equal(t, c, ev.CourseID)
	assert.Equal(t, 1, ev.Attempts)
	assert.Equal(t, "req-1", ev.Correlation())
}

func TestEnrollStudent_OnStartDateAllowed(t *testing.T) {
	f := newFixture(t)
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Analytical Engines", 2)

	_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{StudentID: s, CourseID: c, EnrollmentDate: courseStart})
	assert.NoError(t, err)
}

func TestEnrollStudent_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.student(t, "Alice", "Archer")
	bob := f.student(t, "Bob", "Baker")
	gone := f.student(t, "Gone", "Away")
	require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: shared.KindStudent, ID: gone}))

	single := f.course(t, "Single Seat Course", 1)
	open := f.course(t, "Open Course Seats", 10)
	closed := f.course(t, "Closed Course Seats", 10)
	require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: shared.KindCourse, ID: closed}))

	f.enrolled(t, alice, single)

	before := courseStart.AddDate(0, 0, -1)
	late := courseStart.Add(time.Second)

	tests := []struct {
		name    string
		cmd     EnrollStudentCommand
		check   func(error) bool
		reason  error
		failMsg string
	}{
		{"missing student", EnrollStudentCommand{StudentID: 999, CourseID: open, EnrollmentDate: before}, shared.IsNotFound, nil, "student"},
		{"deleted student", EnrollStudentCommand{StudentID: gone, CourseID: open, EnrollmentDate: before}, shared.IsNotFound, nil, "student"},
		{"missing course", EnrollStudentCommand{StudentID: bob, CourseID: 999, EnrollmentDate: before}, shared.IsNotFound, nil, "course"},
		{"deleted course", EnrollStudentCommand{StudentID: bob, CourseID: closed, EnrollmentDate: before}, shared.IsNotFound, nil, "course"},
		{"already enrolled", EnrollStudentCommand{StudentID: alice, CourseID: single, EnrollmentDate: before}, shared.IsConflict, shared.ErrAlreadyEnrolled, ""},
		{"already enrolled wins over late", EnrollStudentCommand{StudentID: alice, CourseID: single, EnrollmentDate: late}, shared.IsConflict, shared.ErrAlreadyEnrolled, ""},
		{"late enrollment", EnrollStudentCommand{StudentID: bob, CourseID: open, EnrollmentDate: late}, shared.IsInvalidState, shared.ErrLateEnrollment, ""},
		{"late wins over full", EnrollStudentCommand{StudentID: bob, CourseID: single, EnrollmentDate: late}, shared.IsInvalidState, shared.ErrLateEnrollment, ""},
		{"course full", EnrollStudentCommand{StudentID: bob, CourseID: single, EnrollmentDate: before}, shared.IsConflict, shared.ErrCourseFull, ""},
		{"zero student id", EnrollStudentCommand{StudentID: 0, CourseID: open, EnrollmentDate: before}, shared.IsNotFound, nil, "student"},
		{"negative course id", EnrollStudentCommand{StudentID: bob, CourseID: -1, EnrollmentDate: before}, shared.IsNotFound, nil, "course"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.enroll.Handle(ctx, tt.cmd)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
			if tt.reason != nil {
				assert.True(t, errors.Is(err, tt.reason), "unexpected reason: %v", err)
			}
			if tt.failMsg != "" {
				de, ok := shared.AsDomainError(err)
				require.True(t, ok)
				assert.Equal(t, tt.failMsg, de.Domain)
			}
		})
	}

	assert.Equal(t, 1, f.activeCount(t, single))
	assert.Equal(t, 0, f.activeCount(t, open))
}

func TestEnrollStudent_CapacityUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	const capacity, contenders = 5, 40

	c := f.course(t, "Popular Course", capacity)
	ids := make([]int64, contenders)
	for i := range ids {
		ids[i] = f.student(t, "Student", "Number")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
				StudentID:      studentID,
				CourseID:       c,
				EnrollmentDate: courseStart,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, shared.ErrCourseFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, contenders-capacity, full)
	assert.Equal(t, capacity, f.activeCount(t, c))
}

func TestEnrollStudent_DuplicateUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Analytical Engines", 50)

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dup       int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{StudentID: s, CourseID: c, EnrollmentDate: courseStart})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, shared.ErrAlreadyEnrolled) {
				dup++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, dup)
	assert.Equal(t, 1, f.activeCount(t, c))
}

func TestEnrollStudent_DeletedStudentStillHoldsSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.student(t, "Alice", "Archer")
	b := f.student(t, "Bob", "Baker")
	c := f.course(t, "Single Seat Course", 1)

	f.enrolled(t, a, c)
	require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: shared.KindStudent, ID: a}))

	_, err := f.enroll.Handle(ctx, EnrollStudentCommand{StudentID: b, CourseID: c, EnrollmentDate: courseStart})
	assert.True(t, errors.Is(err, shared.ErrCourseFull))
}

func TestEnrollStudent_ReenrollAfterDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Single Seat Course", 1)

	first := f.enrolled(t, s, c)
	require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: shared.KindEnrollment, ID: first}))

	second := f.enrolled(t, s, c)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, f.activeCount(t, c))
}

func TestEnrollStudent_RetriesLostRace(t *testing.T) {
	f := newFixture(t)
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Analytical Engines", 2)

	flaky := &flakyStore{UnitOfWorkFactory: f.store, failures: 2, err: shared.ErrConcurrentModification}
	h := NewEnrollStudentHandler(flaky, f.events, EnrollStudentHandlerConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	res, err := h.Handle(context.Background(), EnrollStudentCommand{StudentID: s, CourseID: c, EnrollmentDate: courseStart})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 1, f.activeCount(t, c))

	ev, ok := f.events.last().(shared.EnrollmentCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, 3, ev.Attempts)
}

func TestEnrollStudent_RetriesExhausted(t *testing.T) {
	f := newFixture(t)
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Analytical Engines", 2)

	flaky := &flakyStore{UnitOfWorkFactory: f.store, failures: 10, err: shared.ErrConcurrentModification}
	h := NewEnrollStudentHandler(flaky, f.events, EnrollStudentHandlerConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})

	_, err := h.Handle(context.Background(), EnrollStudentCommand{StudentID: s, CourseID: c, EnrollmentDate: courseStart})
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))
	assert.True(t, shared.IsRetryable(err))
	assert.False(t, errors.Is(err, shared.ErrCourseFull))
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, 0, f.activeCount(t, c))
}

func TestEnrollStudent_RetriesExhaustedOnFullCourse(t *testing.T) {
	f := newFixture(t)
	ada := f.student(t, "Ada", "Lovelace")
	bob := f.student(t, "Bob", "Babbage")
	c := f.course(t, "Analytical Engines", 1)
	f.enrolled(t, ada, c)

	flaky := &flakyStore{UnitOfWorkFactory: f.store, failures: 10, err: shared.ErrConcurrentModification}
	h := NewEnrollStudentHandler(flaky, f.events, EnrollStudentHandlerConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})

	_, err := h.Handle(context.Background(), EnrollStudentCommand{StudentID: bob, CourseID: c, EnrollmentDate: courseStart})
	require.Error(t, err)
	assert.True(t, shared.IsConflict(err))
	assert.True(t, errors.Is(err, shared.ErrCourseFull))
	assert.True(t, shared.IsRetryable(err))
	assert.Equal(t, 2, flaky.calls)
}

func TestEnrollStudent_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")

	flaky := &flakyStore{UnitOfWorkFactory: f.store, failures: 1, err: boom}
	h := NewEnrollStudentHandler(flaky, f.events, DefaultEnrollStudentHandlerConfig())

	_, err := h.Handle(context.Background(), EnrollStudentCommand{StudentID: 1, CourseID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInternal))
	assert.True(t, errors.Is(err, boom))
	assert.False(t, shared.IsDomain(err))
	assert.Equal(t, 1, flaky.calls)
}

// Сценарий: курс на одно место, второй студент получает CourseFull.
func TestEnrollStudent_SingleSeatScenario(t *testing.T) {
	f := newFixture(t)
	a := f.student(t, "Alice", "Archer")
	b := f.student(t, "Bob", "Baker")
	c := f.course(t, "Single Seat Course", 1)

	id := f.enrolled(t, a, c)
	assert.Equal(t, int64(1), id)

	_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{StudentID: b, CourseID: c, EnrollmentDate: courseStart})
	assert.True(t, shared.IsConflict(err))
	assert.True(t, errors.Is(err, shared.ErrCourseFull))
	assert.Equal(t, 1, f.activeCount(t, c))
}
