package command

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/persistence/memory"
)

var courseStart = time.Date(2031, 2, 1, 9, 0, 0, 0, time.UTC)

// recorder собирает опубликованные события.
type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []shared.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

func (r *recorder) last() shared.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

// flakyStore проваливает первые failures транзакций записи с err.
// calls считает только транзакции записи.
type flakyStore struct {
	enrollment.UnitOfWorkFactory
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (f *flakyStore) Run(ctx context.Context, mode enrollment.TxMode, fn func(uow enrollment.UnitOfWork) error) error {
	f.mu.Lock()
	if mode == enrollment.ReadWrite {
		f.calls++
	}
	fail := mode == enrollment.ReadWrite && f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return f.err
	}
	return f.UnitOfWorkFactory.Run(ctx, mode, fn)
}

// untouchableStore валит тест при любом обращении.
type untouchableStore struct{ t *testing.T }

func (s untouchableStore) Run(context.Context, enrollment.TxMode, func(enrollment.UnitOfWork) error) error {
	s.t.Fatal("store must not be accessed")
	return nil
}

type fixture struct {
	store     *memory.Store
	events    *recorder
	students  *CreateStudentHandler
	courses   *CreateCourseHandler
	enroll    *EnrollStudentHandler
	progress  *UpdateProgressHandler
	lifecycle *SoftDeleteHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	events := &recorder{}
	return &fixture{
		store:     store,
		events:    events,
		students:  NewCreateStudentHandler(store, events),
		courses:   NewCreateCourseHandler(store, events),
		enroll:    NewEnrollStudentHandler(store, events, EnrollStudentHandlerConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}),
		progress:  NewUpdateProgressHandler(store, events),
		lifecycle: NewSoftDeleteHandler(store, events),
	}
}

func (f *fixture) student(t *testing.T, first, last string) int64 {
	t.Helper()
	res, err := f.students.Handle(context.Background(), CreateStudentCommand{FirstName: first, LastName: last})
	require.NoError(t, err)
	return res.StudentID
}

func (f *fixture) course(t *testing.T, title string, cap int) int64 {
	t.Helper()
	res, err := f.courses.Handle(context.Background(), CreateCourseCommand{
		Title:         title,
		StartDate:     courseStart,
		EndDate:       courseStart.AddDate(0, 3, 0),
		EnrollmentCap: cap,
	})
	require.NoError(t, err)
	return res.CourseID
}

func (f *fixture) enrolled(t *testing.T, studentID, courseID int64) int64 {
	t.Helper()
	res, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: courseStart.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	return res.EnrollmentID
}

func (f *fixture) activeCount(t *testing.T, courseID int64) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.Run(context.Background(), enrollment.ReadOnlySnapshot, func(uow enrollment.UnitOfWork) error {
		var err error
		n, err = uow.Enrollments().CountActiveByCourse(context.Background(), courseID)
		return err
	}))
	return n
}
