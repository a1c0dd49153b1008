package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/infrastructure/persistence/storetest"
)

// testConnection connects to TEST_DATABASE_URL, bootstraps the schema and
// empties the tables. The test is skipped when the variable is unset.
func testConnection(t *testing.T) *Connection {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := NewConnectionFromURL(ctx, url)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	_, err = NewMigrator(conn).Migrate(ctx)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, `TRUNCATE enrollments, courses, students RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return conn
}

func TestPostgresStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) enrollment.UnitOfWorkFactory {
		return NewUnitOfWorkFactory(testConnection(t))
	})
}

func TestMigrator_Idempotent(t *testing.T) {
	conn := testConnection(t)

	applied, err := NewMigrator(conn).Migrate(context.Background())
	require.NoError(t, err)
	require.Zero(t, applied)
}

func TestConnection_Health(t *testing.T) {
	conn := testConnection(t)

	h, err := conn.Health(context.Background())
	require.NoError(t, err)
	require.Positive(t, h.MaxConns)
	require.GreaterOrEqual(t, h.TotalConns, h.IdleConns)

	conn.Close()
	_, err = conn.Health(context.Background())
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestMigrator_CommitFailureIsNotCounted(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()

	// The deferred constraint passes every statement and fails at COMMIT.
	m := NewMigrator(conn)
	m.migrations = append(GetMigrations(), Migration{
		Version: 900,
		Name:    "deferred_violation",
		UpSQL: `
			CREATE TABLE deferred_violation (
				id INTEGER,
				CONSTRAINT deferred_violation_id UNIQUE (id) DEFERRABLE INITIALLY DEFERRED
			);
			INSERT INTO deferred_violation VALUES (1), (1);`,
	})

	applied, err := m.Migrate(ctx)
	require.ErrorIs(t, err, ErrMigrationFailed)
	require.Zero(t, applied)

	var recorded bool
	require.NoError(t, conn.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = 900)`).Scan(&recorded))
	require.False(t, recorded)
}
