package command

import (
	"context"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SOFT DELETE COMMAND
// Единственное место, где выставляется флаг Deleted. Удаление не
// каскадируется: записи удалённого студента или курса остаются,
// их отсекают запросы чтения. Повторное удаление - NotFound.
// ══════════════════════════════════════════════════════════════════════════════

// SoftDeleteCommand помечает сущность удалённой.
type SoftDeleteCommand struct {
	Kind shared.EntityKind
	ID   int64

	CorrelationID string
}

// Validate проверяет вид сущности. Несуществующий ID, в том числе 0 или
// отрицательный, даёт NotFound из хранилища.
func (c SoftDeleteCommand) Validate() error {
	if !c.Kind.IsValid() {
		return shared.Validation("lifecycle", "SoftDelete", "kind", shared.ErrUnknownEntityKind)
	}
	return nil
}

// SoftDeleteHandler обрабатывает SoftDeleteCommand.
type SoftDeleteHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
}

// NewSoftDeleteHandler создаёт обработчик.
func NewSoftDeleteHandler(uow enrollment.UnitOfWorkFactory, publisher shared.EventPublisher) *SoftDeleteHandler {
	return &SoftDeleteHandler{uow: uow, publisher: publisher}
}

// Handle удаляет сущность.
func (h *SoftDeleteHandler) Handle(ctx context.Context, cmd SoftDeleteCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		switch cmd.Kind {
		case shared.KindStudent:
			return uow.Students().SoftDelete(ctx, cmd.ID)
		case shared.KindCourse:
			return uow.Courses().SoftDelete(ctx, cmd.ID)
		default:
			return uow.Enrollments().SoftDelete(ctx, cmd.ID)
		}
	})
	if err != nil {
		return internalize(cmd.Kind.String(), "SoftDelete", err)
	}

	publish(h.publisher, cmd.CorrelationID, shared.NewSoftDeletedEvent(cmd.Kind.String(), cmd.ID))
	return nil
}
