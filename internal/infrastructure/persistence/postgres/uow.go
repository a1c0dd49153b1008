package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWorkFactory implements enrollment.UnitOfWorkFactory on a pgx pool.
type UnitOfWorkFactory struct {
	conn *Connection
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory.
func NewUnitOfWorkFactory(conn *Connection) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{conn: conn}
}

// Run executes fn inside one transaction. Read-write work runs at READ
// COMMITTED and relies on row locks; read-only work runs at REPEATABLE READ so
// that every statement sees the same snapshot.
func (f *UnitOfWorkFactory) Run(ctx context.Context, mode enrollment.TxMode, fn func(uow enrollment.UnitOfWork) error) error {
	opts := DefaultTxOptions()
	if mode == enrollment.ReadOnlySnapshot {
		opts = SnapshotTxOptions()
	}

	return f.conn.WithTx(ctx, opts, func(tx pgx.Tx) error {
		return fn(&unitOfWork{tx: tx})
	})
}

type unitOfWork struct {
	tx pgx.Tx
}

func (u *unitOfWork) Students() student.Repository {
	return NewStudentRepository(u.tx)
}

func (u *unitOfWork) Courses() course.Repository {
	return NewCourseRepository(u.tx)
}

func (u *unitOfWork) Enrollments() enrollment.Repository {
	return NewEnrollmentRepository(u.tx)
}

func (u *unitOfWork) Views() enrollment.ReadModel {
	return NewReadModel(u.tx)
}
