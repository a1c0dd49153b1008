package postgres

import (
	"context"
	"fmt"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// READ MODEL
// Joins enrollments with their parents. Rows whose student or course is
// tombstoned never contribute to a result.
// ══════════════════════════════════════════════════════════════════════════════

// ReadModel implements enrollment.ReadModel for PostgreSQL.
type ReadModel struct {
	q Querier
}

// NewReadModel creates a new ReadModel.
func NewReadModel(q Querier) *ReadModel {
	return &ReadModel{q: q}
}

// EnrolledCountByCourse counts live enrollments of active students in a course.
func (m *ReadModel) EnrolledCountByCourse(ctx context.Context, courseID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.course_id = $1 AND NOT e.deleted AND NOT s.deleted
	`

	var count int
	if err := m.q.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count course enrollments: %w", err)
	}
	return count, nil
}

// EnrolledCountsByCourse returns the same count for every course that has one.
func (m *ReadModel) EnrolledCountsByCourse(ctx context.Context) (map[int64]int, error) {
	query := `
		SELECT e.course_id, COUNT(*)
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE NOT e.deleted AND NOT s.deleted
		GROUP BY e.course_id
	`
	return m.countsBy(ctx, query)
}

// CourseCountByStudent counts live enrollments of a student in active courses.
func (m *ReadModel) CourseCountByStudent(ctx context.Context, studentID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1 AND NOT e.deleted AND NOT c.deleted
	`

	var count int
	if err := m.q.QueryRow(ctx, query, studentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count student enrollments: %w", err)
	}
	return count, nil
}

// CourseCountsByStudent returns the same count for every student that has one.
func (m *ReadModel) CourseCountsByStudent(ctx context.Context) (map[int64]int, error) {
	query := `
		SELECT e.student_id, COUNT(*)
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE NOT e.deleted AND NOT c.deleted
		GROUP BY e.student_id
	`
	return m.countsBy(ctx, query)
}

func (m *ReadModel) countsBy(ctx context.Context, query string) (map[int64]int, error) {
	rows, err := m.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			id    int64
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[id] = count
	}

	return counts, rows.Err()
}

// CoursesOfStudent returns active courses the student is actively enrolled in.
func (m *ReadModel) CoursesOfStudent(ctx context.Context, studentID int64) ([]*course.Course, error) {
	query := `
		SELECT c.id, c.title, c.start_date, c.end_date, c.enrollment_cap, c.deleted, c.created_at, c.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.student_id = $1 AND NOT e.deleted AND NOT c.deleted
		ORDER BY c.start_date, c.id
	`

	rows, err := m.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query student courses: %w", err)
	}

	return collectCourses(rows)
}

// StudentsOfCourse returns active students actively enrolled in the course.
func (m *ReadModel) StudentsOfCourse(ctx context.Context, courseID int64) ([]*student.Student, error) {
	query := `
		SELECT s.id, s.first_name, s.last_name, s.deleted, s.created_at, s.updated_at
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.course_id = $1 AND NOT e.deleted AND NOT s.deleted
		ORDER BY s.last_name, s.first_name, s.id
	`

	rows, err := m.q.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course students: %w", err)
	}

	return collectStudents(rows)
}
