package command

import (
	"context"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudentCommand содержит данные нового студента.
type CreateStudentCommand struct {
	FirstName string
	LastName  string

	// CorrelationID для трассировки.
	CorrelationID string
}

// CreateStudentResult содержит результат создания.
type CreateStudentResult struct {
	StudentID int64
	Student   *student.Student
}

// CreateStudentHandler обрабатывает CreateStudentCommand.
type CreateStudentHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
}

// NewCreateStudentHandler создаёт обработчик.
func NewCreateStudentHandler(uow enrollment.UnitOfWorkFactory, publisher shared.EventPublisher) *CreateStudentHandler {
	return &CreateStudentHandler{uow: uow, publisher: publisher}
}

// Handle создаёт студента.
func (h *CreateStudentHandler) Handle(ctx context.Context, cmd CreateStudentCommand) (*CreateStudentResult, error) {
	s, err := student.NewStudent(student.NewStudentParams{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
	})
	if err != nil {
		return nil, err
	}

	err = h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		return uow.Students().Create(ctx, s)
	})
	if err != nil {
		return nil, internalize("student", "Create", err)
	}

	publish(h.publisher, cmd.CorrelationID,
		shared.NewStudentChangedEvent(shared.EventStudentCreated, s.ID, s.FirstName, s.LastName))

	return &CreateStudentResult{StudentID: s.ID, Student: s}, nil
}
