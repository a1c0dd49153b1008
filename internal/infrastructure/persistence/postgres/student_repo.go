package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	q Querier
}

// NewStudentRepository creates a new StudentRepository bound to a transaction
// or pool.
func NewStudentRepository(q Querier) *StudentRepository {
	return &StudentRepository{q: q}
}

const studentColumns = `id, first_name, last_name, deleted, created_at, updated_at`

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.q.QueryRow(ctx, query, s.FirstName, s.LastName, s.CreatedAt, s.UpdatedAt).Scan(&s.ID); err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// Get returns an active student by ID.
func (r *StudentRepository) Get(ctx context.Context, id int64) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND NOT deleted`

	s, err := scanStudent(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NotFound("student", "Get", id)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return s, nil
}

// Update updates the names of an active student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET first_name = $1, last_name = $2, updated_at = $3
		WHERE id = $4 AND NOT deleted
	`

	result, err := r.q.Exec(ctx, query, s.FirstName, s.LastName, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFound("student", "Update", s.ID)
	}

	return nil
}

// SoftDelete tombstones an active student.
func (r *StudentRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE students SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT deleted`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.NotFound("student", "SoftDelete", id)
	}

	return nil
}

// List returns all active students ordered by ID.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE NOT deleted ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	return collectStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Deleted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectStudents(rows pgx.Rows) ([]*student.Student, error) {
	defer rows.Close()

	students := make([]*student.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}

	return students, nil
}
