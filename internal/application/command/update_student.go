package command

import (
	"context"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// UpdateStudentCommand переименовывает студента.
type UpdateStudentCommand struct {
	StudentID int64
	FirstName string
	LastName  string

	CorrelationID string
}

// UpdateStudentHandler обрабатывает UpdateStudentCommand.
type UpdateStudentHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
}

// NewUpdateStudentHandler создаёт обработчик.
func NewUpdateStudentHandler(uow enrollment.UnitOfWorkFactory, publisher shared.EventPublisher) *UpdateStudentHandler {
	return &UpdateStudentHandler{uow: uow, publisher: publisher}
}

// Handle применяет новые имя и фамилию. Удалённый студент не найден.
func (h *UpdateStudentHandler) Handle(ctx context.Context, cmd UpdateStudentCommand) (*student.Student, error) {
	var updated *student.Student
	err := h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		s, err := uow.Students().Get(ctx, cmd.StudentID)
		if err != nil {
			return err
		}
		if err := s.Rename(cmd.FirstName, cmd.LastName); err != nil {
			return err
		}
		if err := uow.Students().Update(ctx, s); err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, internalize("student", "Update", err)
	}

	publish(h.publisher, cmd.CorrelationID,
		shared.NewStudentChangedEvent(shared.EventStudentUpdated, updated.ID, updated.FirstName, updated.LastName))

	return updated, nil
}
