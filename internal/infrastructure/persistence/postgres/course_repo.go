package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	q Querier
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(q Querier) *CourseRepository {
	return &CourseRepository{q: q}
}

const courseColumns = `id, title, start_date, end_date, enrollment_cap, deleted, created_at, updated_at`

// Create creates a new course.
func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (title, start_date, end_date, enrollment_cap, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		c.Title, c.StartDate, c.EndDate, c.EnrollmentCap, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if IsCheckViolation(err) {
			return shared.Validation("course", "Create", "end_date", shared.ErrInvalidDateRange)
		}
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// Get returns an active course by ID.
func (r *CourseRepository) Get(ctx context.Context, id int64) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND NOT deleted`
	return r.get(ctx, "Get", query, id)
}

// GetForUpdate returns an active course and holds its row lock until the
// transaction ends.
func (r *CourseRepository) GetForUpdate(ctx context.Context, id int64) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND NOT deleted FOR UPDATE`
	return r.get(ctx, "GetForUpdate", query, id)
}

func (r *CourseRepository) get(ctx context.Context, op, query string, id int64) (*course.Course, error) {
	c, err := scanCourse(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NotFound("course", op, id)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return c, nil
}

// Update updates an active course.
func (r *CourseRepository) Update(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE courses SET
			title = $1,
			start_date = $2,
			end_date = $3,
			enrollment_cap = $4,
			updated_at = $5
		WHERE id = $6 AND NOT deleted
	`

	result, err := r.q.Exec(ctx, query,
		c.Title, c.StartDate, c.EndDate, c.EnrollmentCap, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if IsCheckViolation(err) {
			return shared.Validation("course", "Update", "end_date", shared.ErrInvalidDateRange)
		}
		return fmt.Errorf("failed to update course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFound("course", "Update", c.ID)
	}

	return nil
}

// SoftDelete tombstones an active course.
func (r *CourseRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE courses SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT deleted`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFound("course", "SoftDelete", id)
	}

	return nil
}

// List returns all active courses ordered by ID.
func (r *CourseRepository) List(ctx context.Context) ([]*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE NOT deleted ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return collectCourses(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanCourse(row pgx.Row) (*course.Course, error) {
	var c course.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.StartDate, &c.EndDate, &c.EnrollmentCap,
		&c.Deleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	return &c, nil
}

func collectCourses(rows pgx.Rows) ([]*course.Course, error) {
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	return courses, nil
}
