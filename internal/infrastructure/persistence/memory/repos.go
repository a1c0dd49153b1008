package memory

import (
	"context"
	"sort"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

type studentRepo struct{ u *unitOfWork }

func (r *studentRepo) Create(_ context.Context, s *student.Student) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.st.studentSeq++
	s.ID = r.u.st.studentSeq
	r.u.st.students[s.ID] = s.Clone()
	return nil
}

func (r *studentRepo) active(op string, id int64) (*student.Student, error) {
	s, ok := r.u.st.students[id]
	if !ok || s.Deleted {
		return nil, shared.NotFound("student", op, id)
	}
	return s, nil
}

func (r *studentRepo) Get(_ context.Context, id int64) (*student.Student, error) {
	s, err := r.active("Get", id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

func (r *studentRepo) Update(_ context.Context, s *student.Student) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	cur, err := r.active("Update", s.ID)
	if err != nil {
		return err
	}
	next := cur.Clone()
	next.FirstName = s.FirstName
	next.LastName = s.LastName
	next.UpdatedAt = s.UpdatedAt
	r.u.st.students[s.ID] = next
	return nil
}

func (r *studentRepo) SoftDelete(_ context.Context, id int64) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	cur, err := r.active("SoftDelete", id)
	if err != nil {
		return err
	}
	next := cur.Clone()
	next.Deleted = true
	r.u.st.students[id] = next
	return nil
}

func (r *studentRepo) List(_ context.Context) ([]*student.Student, error) {
	out := make([]*student.Student, 0)
	for _, id := range sortedKeys(r.u.st.students) {
		if s := r.u.st.students[id]; !s.Deleted {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSES
// ══════════════════════════════════════════════════════════════════════════════

type courseRepo struct{ u *unitOfWork }

func (r *courseRepo) Create(_ context.Context, c *course.Course) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	r.u.st.courseSeq++
	c.ID = r.u.st.courseSeq
	r.u.st.courses[c.ID] = c.Clone()
	return nil
}

func (r *courseRepo) active(op string, id int64) (*course.Course, error) {
	c, ok := r.u.st.courses[id]
	if !ok || c.Deleted {
		return nil, shared.NotFound("course", op, id)
	}
	return c, nil
}

func (r *courseRepo) Get(_ context.Context, id int64) (*course.Course, error) {
	c, err := r.active("Get", id)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// GetForUpdate is Get: the write transaction already holds the store lock.
func (r *courseRepo) GetForUpdate(ctx context.Context, id int64) (*course.Course, error) {
	return r.Get(ctx, id)
}

func (r *courseRepo) Update(_ context.Context, c *course.Course) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	cur, err := r.active("Update", c.ID)
	if err != nil {
		return err
	}
	next := c.Clone()
	next.Deleted = cur.Deleted
	next.CreatedAt = cur.CreatedAt
	r.u.st.courses[c.ID] = next
	return nil
}

func (r *courseRepo) SoftDelete(_ context.Context, id int64) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	cur, err := r.active("SoftDelete", id)
	if err != nil {
		return err
	}
	next := cur.Clone()
	next.Deleted = true
	r.u.st.courses[id] = next
	return nil
}

func (r *courseRepo) List(_ context.Context) ([]*course.Course, error) {
	out := make([]*course.Course, 0)
	for _, id := range sortedKeys(r.u.st.courses) {
		if c := r.u.st.courses[id]; !c.Deleted {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

type enrollmentRepo struct{ u *unitOfWork }

func (r *enrollmentRepo) Create(_ context.Context, e *enrollment.Enrollment) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	for _, cur := range r.u.st.enrollments {
		if !cur.Deleted && cur.StudentID == e.StudentID && cur.CourseID == e.CourseID {
			return shared.Conflict("enrollment", "Create", shared.ErrAlreadyEnrolled)
		}
	}
	r.u.st.enrollmentSeq++
	e.ID = r.u.st.enrollmentSeq
	r.u.st.enrollments[e.ID] = e.Clone()
	return nil
}

func (r *enrollmentRepo) active(op string, id int64) (*enrollment.Enrollment, error) {
	e, ok := r.u.st.enrollments[id]
	if !ok || e.Deleted {
		return nil, shared.NotFound("enrollment", op, id)
	}
	return e, nil
}

func (r *enrollmentRepo) Get(_ context.Context, id int64) (*enrollment.Enrollment, error) {
	e, err := r.active("Get", id)
	if err != nil {
		return nil, err
	}
	return e.Clone(), nil
}

func (r *enrollmentRepo) GetForUpdate(ctx context.Context, id int64) (*enrollment.Enrollment, error) {
	return r.Get(ctx, id)
}

func (r *enrollmentRepo) FindActive(_ context.Context, studentID, courseID int64) (*enrollment.Enrollment, error) {
	for _, id := range sortedKeys(r.u.st.enrollments) {
		e := r.u.st.enrollments[id]
		if !e.Deleted && e.StudentID == studentID && e.CourseID == courseID {
			return e.Clone(), nil
		}
	}
	return nil, shared.NotFound("enrollment", "FindActive", 0)
}

func (r *enrollmentRepo) CountActiveByCourse(_ context.Context, courseID int64) (int, error) {
	n := 0
	for _, e := range r.u.st.enrollments {
		if !e.Deleted && e.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (r *enrollmentRepo) UpdateProgress(_ context.Context, e *enrollment.Enrollment) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	cur, err := r.active("UpdateProgress", e.ID)
	if err != nil {
		return err
	}
	next := cur.Clone()
	next.Progress = e.Progress
	next.Completed = e.Completed
	next.UpdatedAt = e.UpdatedAt
	r.u.st.enrollments[e.ID] = next
	return nil
}

func (r *enrollmentRepo) SoftDelete(_ context.Context, id int64) error {
	if err := r.u.writable(); err != nil {
		return err
	}
	cur, err := r.active("SoftDelete", id)
	if err != nil {
		return err
	}
	next := cur.Clone()
	next.Deleted = true
	r.u.st.enrollments[id] = next
	return nil
}

func (r *enrollmentRepo) List(_ context.Context) ([]*enrollment.Enrollment, error) {
	out := make([]*enrollment.Enrollment, 0)
	for _, id := range sortedKeys(r.u.st.enrollments) {
		if e := r.u.st.enrollments[id]; !e.Deleted {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READ MODEL
// ══════════════════════════════════════════════════════════════════════════════

type readModel struct{ u *unitOfWork }

// liveEnrollments yields enrollments that are not deleted and whose student
// and course are not deleted either.
func (m *readModel) liveEnrollments(keep func(e *enrollment.Enrollment) bool) []*enrollment.Enrollment {
	out := make([]*enrollment.Enrollment, 0)
	for _, id := range sortedKeys(m.u.st.enrollments) {
		e := m.u.st.enrollments[id]
		if e.Deleted || !keep(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (m *readModel) studentActive(id int64) bool {
	s, ok := m.u.st.students[id]
	return ok && !s.Deleted
}

func (m *readModel) courseActive(id int64) bool {
	c, ok := m.u.st.courses[id]
	return ok && !c.Deleted
}

func (m *readModel) EnrolledCountByCourse(_ context.Context, courseID int64) (int, error) {
	return len(m.liveEnrollments(func(e *enrollment.Enrollment) bool {
		return e.CourseID == courseID && m.studentActive(e.StudentID)
	})), nil
}

func (m *readModel) EnrolledCountsByCourse(_ context.Context) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, e := range m.liveEnrollments(func(e *enrollment.Enrollment) bool { return m.studentActive(e.StudentID) }) {
		counts[e.CourseID]++
	}
	return counts, nil
}

func (m *readModel) CourseCountByStudent(_ context.Context, studentID int64) (int, error) {
	return len(m.liveEnrollments(func(e *enrollment.Enrollment) bool {
		return e.StudentID == studentID && m.courseActive(e.CourseID)
	})), nil
}

func (m *readModel) CourseCountsByStudent(_ context.Context) (map[int64]int, error) {
	counts := make(map[int64]int)
	for _, e := range m.liveEnrollments(func(e *enrollment.Enrollment) bool { return m.courseActive(e.CourseID) }) {
		counts[e.StudentID]++
	}
	return counts, nil
}

func (m *readModel) CoursesOfStudent(_ context.Context, studentID int64) ([]*course.Course, error) {
	out := make([]*course.Course, 0)
	for _, e := range m.liveEnrollments(func(e *enrollment.Enrollment) bool {
		return e.StudentID == studentID && m.courseActive(e.CourseID)
	}) {
		out = append(out, m.u.st.courses[e.CourseID].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (m *readModel) StudentsOfCourse(_ context.Context, courseID int64) ([]*student.Student, error) {
	out := make([]*student.Student, 0)
	for _, e := range m.liveEnrollments(func(e *enrollment.Enrollment) bool {
		return e.CourseID == courseID && m.studentActive(e.StudentID)
	}) {
		out = append(out, m.u.st.students[e.StudentID].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return out, nil
}
