// Package memory implements the entity store in process memory.
// It serves local runs (STORE_DRIVER=memory) and the test suites.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ErrReadOnly is returned when a read-only transaction attempts a write.
var ErrReadOnly = errors.New("memory: write in read-only transaction")

// state is the full contents of the store. Entities are never mutated in
// place: a write stores a fresh clone, so a shallow copy of the maps is a
// safe transactional working copy.
type state struct {
	students    map[int64]*student.Student
	courses     map[int64]*course.Course
	enrollments map[int64]*enrollment.Enrollment

	studentSeq    int64
	courseSeq     int64
	enrollmentSeq int64
}

func newState() state {
	return state{
		students:    make(map[int64]*student.Student),
		courses:     make(map[int64]*course.Course),
		enrollments: make(map[int64]*enrollment.Enrollment),
	}
}

func (s state) clone() state {
	c := s
	c.students = make(map[int64]*student.Student, len(s.students))
	for k, v := range s.students {
		c.students[k] = v
	}
	c.courses = make(map[int64]*course.Course, len(s.courses))
	for k, v := range s.courses {
		c.courses[k] = v
	}
	c.enrollments = make(map[int64]*enrollment.Enrollment, len(s.enrollments))
	for k, v := range s.enrollments {
		c.enrollments[k] = v
	}
	return c
}

// Store implements enrollment.UnitOfWorkFactory.
//
// A read-write transaction holds the exclusive lock for its whole duration
// and works on a copy of the state that replaces the live state only on
// success. Read-only transactions share the lock and read the live state
// directly, which cannot change while they hold it.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Run implements enrollment.UnitOfWorkFactory.
func (s *Store) Run(ctx context.Context, mode enrollment.TxMode, fn func(uow enrollment.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if mode == enrollment.ReadOnlySnapshot {
		s.mu.RLock()
		defer s.mu.RUnlock()

		return fn(&unitOfWork{st: &s.state, readOnly: true})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The caller may have given up while waiting for the lock.
	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.state.clone()
	if err := fn(&unitOfWork{st: &working}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = working
	return nil
}

// Stats reports row counts including tombstoned rows.
type Stats struct {
	Students    int
	Courses     int
	Enrollments int
}

// Stats returns the current row counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Students:    len(s.state.students),
		Courses:     len(s.state.courses),
		Enrollments: len(s.state.enrollments),
	}
}

type unitOfWork struct {
	st       *state
	readOnly bool
}

func (u *unitOfWork) Students() student.Repository       { return &studentRepo{u} }
func (u *unitOfWork) Courses() course.Repository         { return &courseRepo{u} }
func (u *unitOfWork) Enrollments() enrollment.Repository { return &enrollmentRepo{u} }
func (u *unitOfWork) Views() enrollment.ReadModel        { return &readModel{u} }

func (u *unitOfWork) writable() error {
	if u.readOnly {
		return ErrReadOnly
	}
	return nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
