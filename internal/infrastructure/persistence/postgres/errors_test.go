package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

func TestErrorHelpers(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsUniqueViolation(wrap("23505")))
	assert.True(t, IsForeignKeyViolation(wrap("23503")))
	assert.True(t, IsCheckViolation(wrap("23514")))
	assert.True(t, IsSerializationFailure(wrap("40001")))
	assert.True(t, IsDeadlock(wrap("40P01")))
	assert.True(t, IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))

	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsDeadlock(wrap("40001")))
}

func TestClassifyTxError(t *testing.T) {
	err := classifyTxError(&pgconn.PgError{Code: "40001"})
	assert.True(t, shared.IsRetryable(err))

	err = classifyTxError(&pgconn.PgError{Code: "40P01"})
	assert.True(t, shared.IsRetryable(err))

	plain := errors.New("boom")
	assert.Same(t, plain, classifyTxError(plain))
}

func TestTxOptions(t *testing.T) {
	assert.Equal(t, pgx.ReadCommitted, DefaultTxOptions().IsoLevel)
	assert.Equal(t, pgx.ReadWrite, DefaultTxOptions().AccessMode)
	assert.Equal(t, pgx.RepeatableRead, SnapshotTxOptions().IsoLevel)
	assert.Equal(t, pgx.ReadOnly, SnapshotTxOptions().AccessMode)
}

func TestPoolHealth_String(t *testing.T) {
	h := PoolHealth{
		PingLatency:   1500 * time.Microsecond,
		TotalConns:    3,
		IdleConns:     2,
		AcquiredConns: 1,
		MaxConns:      10,
	}
	assert.Equal(t, "ping 1.5ms, conns 3/10 (idle 2, acquired 1)", h.String())
}
