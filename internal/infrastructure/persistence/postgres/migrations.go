package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA BOOTSTRAP
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one embedded schema version.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

// Migrator applies embedded schema versions that are not yet recorded.
// There is no rollback: the service only brings a fresh database up to date.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// Migrate applies all pending migrations, each in its own transaction.
// It returns the number of migrations applied.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)
	if _, err := m.conn.Exec(ctx, createTable); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := 0
	for _, mig := range m.migrations {
		ran, err := m.apply(ctx, mig)
		if err != nil {
			return applied, fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
		// Counted only once the transaction has committed.
		if ran {
			applied++
		}
	}

	return applied, nil
}

// apply runs one migration unless it is already recorded. It reports whether
// the migration was executed.
func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	ran := false
	err := m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		// Serialize concurrent bootstraps of several replicas.
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", m.tableName); err != nil {
			return err
		}

		var exists bool
		q := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE version = $1)", m.tableName)
		if err := tx.QueryRow(ctx, q, mig.Version).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}

		if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
		}

		insert := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
		if _, err := tx.Exec(ctx, insert, mig.Version, mig.Name); err != nil {
			return err
		}
		ran = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return ran, nil
}

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_students_courses", UpSQL: migration001Up},
		{Version: 2, Name: "create_enrollments", UpSQL: migration002Up},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: STUDENTS & COURSES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS students (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(200) NOT NULL,
    start_date TIMESTAMP WITH TIME ZONE NOT NULL,
    end_date TIMESTAMP WITH TIME ZONE NOT NULL,
    enrollment_cap INTEGER NOT NULL,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT courses_dates_ordered CHECK (end_date > start_date),
    CONSTRAINT courses_cap_positive CHECK (enrollment_cap > 0)
);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS enrollments (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES students(id),
    course_id BIGINT NOT NULL REFERENCES courses(id),
    enrollment_date TIMESTAMP WITH TIME ZONE NOT NULL,
    progress SMALLINT NOT NULL DEFAULT 0,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT enrollments_progress_range CHECK (progress BETWEEN 0 AND 100),
    CONSTRAINT enrollments_completed_matches CHECK (completed = (progress = 100))
);

-- At most one live enrollment per pair; tombstoned rows do not block re-enrollment.
CREATE UNIQUE INDEX IF NOT EXISTS ux_enrollments_active_pair
    ON enrollments (student_id, course_id) WHERE NOT deleted;

CREATE INDEX IF NOT EXISTS ix_enrollments_course_active
    ON enrollments (course_id) WHERE NOT deleted;

CREATE INDEX IF NOT EXISTS ix_enrollments_student_active
    ON enrollments (student_id) WHERE NOT deleted;
`
