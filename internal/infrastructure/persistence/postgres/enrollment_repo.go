package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
type EnrollmentRepository struct {
	q Querier
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(q Querier) *EnrollmentRepository {
	return &EnrollmentRepository{q: q}
}

const enrollmentColumns = `id, student_id, course_id, enrollment_date, progress, completed, deleted, created_at, updated_at`

// Create inserts a new enrollment. The partial unique index on
// (student_id, course_id) WHERE NOT deleted rejects a second live row.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			student_id, course_id, enrollment_date, progress, completed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		e.StudentID, e.CourseID, e.EnrollmentDate, e.Progress.Int(), e.Completed, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.Conflict("enrollment", "Create", shared.ErrAlreadyEnrolled)
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

// Get returns an active enrollment by ID.
func (r *EnrollmentRepository) Get(ctx context.Context, id int64) (*enrollment.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1 AND NOT deleted`
	return r.getOne(ctx, "Get", id, query, id)
}

// GetForUpdate returns an active enrollment and locks its row.
func (r *EnrollmentRepository) GetForUpdate(ctx context.Context, id int64) (*enrollment.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1 AND NOT deleted FOR UPDATE`
	return r.getOne(ctx, "GetForUpdate", id, query, id)
}

// FindActive returns the live enrollment of a student in a course, locked.
func (r *EnrollmentRepository) FindActive(ctx context.Context, studentID, courseID int64) (*enrollment.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND course_id = $2 AND NOT deleted
		FOR UPDATE
	`
	return r.getOne(ctx, "FindActive", 0, query, studentID, courseID)
}

func (r *EnrollmentRepository) getOne(ctx context.Context, op string, id int64, query string, args ...interface{}) (*enrollment.Enrollment, error) {
	e, err := scanEnrollment(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NotFound("enrollment", op, id)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

// CountActiveByCourse counts live enrollments of a course regardless of the
// students' state.
func (r *EnrollmentRepository) CountActiveByCourse(ctx context.Context, courseID int64) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND NOT deleted`

	var count int
	if err := r.q.QueryRow(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	return count, nil
}

// UpdateProgress stores progress and completion of an active enrollment.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		UPDATE enrollments SET progress = $1, completed = $2, updated_at = $3
		WHERE id = $4 AND NOT deleted
	`

	result, err := r.q.Exec(ctx, query, e.Progress.Int(), e.Completed, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFound("enrollment", "UpdateProgress", e.ID)
	}

	return nil
}

// SoftDelete tombstones an active enrollment.
func (r *EnrollmentRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE enrollments SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT deleted`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFound("enrollment", "SoftDelete", id)
	}

	return nil
}

// List returns all active enrollments ordered by ID.
func (r *EnrollmentRepository) List(ctx context.Context) ([]*enrollment.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE NOT deleted ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	result := make([]*enrollment.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}

	return result, nil
}

func scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	var (
		e        enrollment.Enrollment
		progress int16
	)
	err := row.Scan(
		&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &progress,
		&e.Completed, &e.Deleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Progress = shared.Progress(progress)
	e.EnrollmentDate = e.EnrollmentDate.UTC()
	return &e, nil
}
