package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

func TestSoftDelete_Idempotence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids := map[shared.EntityKind]int64{
		shared.KindStudent: f.student(t, "Ada", "Lovelace"),
		shared.KindCourse:  f.course(t, "Analytical Engines", 2),
	}
	ids[shared.KindEnrollment] = f.enrolled(t, f.student(t, "Alan", "Turing"), ids[shared.KindCourse])

	for kind, id := range ids {
		t.Run(kind.String(), func(t *testing.T) {
			require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: kind, ID: id}))

			ev, ok := f.events.last().(shared.SoftDeletedEvent)
			require.True(t, ok)
			assert.Equal(t, kind.String(), ev.Kind)

			err := f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: kind, ID: id})
			assert.True(t, shared.IsNotFound(err), "second delete: %v", err)

			// Идентификаторы, которые ничего не называют, тоже NotFound.
			for _, missing := range []int64{999, 0, -1} {
				err := f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: kind, ID: missing})
				assert.True(t, shared.IsNotFound(err), "id %d: %v", missing, err)
				assert.False(t, shared.IsValidation(err), "id %d: %v", missing, err)
			}
		})
	}
}

func TestSoftDelete_NoCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ada", "Lovelace")
	c := f.course(t, "Analytical Engines", 2)
	id := f.enrolled(t, s, c)

	require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: shared.KindCourse, ID: c}))
	require.NoError(t, f.lifecycle.Handle(ctx, SoftDeleteCommand{Kind: shared.KindStudent, ID: s}))

	require.NoError(t, f.store.Run(ctx, enrollment.ReadOnlySnapshot, func(uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, e.Deleted)
		return nil
	}))
}

func TestSoftDelete_UnknownKind(t *testing.T) {
	h := NewSoftDeleteHandler(untouchableStore{t}, nil)

	err := h.Handle(context.Background(), SoftDeleteCommand{Kind: "instructor", ID: 1})
	assert.True(t, shared.IsValidation(err))
	assert.True(t, errors.Is(err, shared.ErrUnknownEntityKind))
}
