package command

import (
	"context"
	"fmt"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROGRESS COMMANDS
// Прогресс проверяется до обращения к хранилищу. Completed всегда
// пересчитывается из нового значения; снижение прогресса разрешено.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgressCommand задаёт прогресс записи по её ID.
type UpdateProgressCommand struct {
	EnrollmentID int64
	Progress     int

	CorrelationID string
}

// Validate проверяет диапазон прогресса до любого обращения к хранилищу.
func (c UpdateProgressCommand) Validate() (shared.Progress, error) {
	return shared.NewProgress(c.Progress)
}

// UpdateProgressByStudentCourseCommand задаёт прогресс активной записи
// студента на курс.
type UpdateProgressByStudentCourseCommand struct {
	StudentID int64
	CourseID  int64
	Progress  int

	CorrelationID string
}

// Validate проверяет диапазон прогресса до любого обращения к хранилищу.
func (c UpdateProgressByStudentCourseCommand) Validate() (shared.Progress, error) {
	return shared.NewProgress(c.Progress)
}

// UpdateProgressResult содержит результат обновления.
type UpdateProgressResult struct {
	EnrollmentID int64
	OldProgress  int
	Progress     int
	Completed    bool
}

// UpdateProgressHandler обрабатывает обе команды обновления прогресса.
type UpdateProgressHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
}

// NewUpdateProgressHandler создаёт обработчик.
func NewUpdateProgressHandler(uow enrollment.UnitOfWorkFactory, publisher shared.EventPublisher) *UpdateProgressHandler {
	return &UpdateProgressHandler{uow: uow, publisher: publisher}
}

// Handle обновляет прогресс записи по ID.
func (h *UpdateProgressHandler) Handle(ctx context.Context, cmd UpdateProgressCommand) (*UpdateProgressResult, error) {
	p, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	var result *UpdateProgressResult
	err = h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().GetForUpdate(ctx, cmd.EnrollmentID)
		if err != nil {
			return err
		}
		result, err = applyProgress(ctx, uow, e, p)
		return err
	})
	if err != nil {
		return nil, internalize("enrollment", "UpdateProgress", err)
	}

	h.emit(cmd.CorrelationID, result)
	return result, nil
}

// HandleByStudentCourse обновляет прогресс активной записи пары студент/курс.
func (h *UpdateProgressHandler) HandleByStudentCourse(ctx context.Context, cmd UpdateProgressByStudentCourseCommand) (*UpdateProgressResult, error) {
	p, err := cmd.Validate()
	if err != nil {
		return nil, err
	}

	var result *UpdateProgressResult
	err = h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		if _, err := uow.Students().Get(ctx, cmd.StudentID); err != nil {
			return err
		}

		e, err := uow.Enrollments().FindActive(ctx, cmd.StudentID, cmd.CourseID)
		if shared.IsNotFound(err) {
			return shared.NewDomainError("enrollment", "UpdateProgressByStudentCourse", shared.ErrNotFound,
				fmt.Sprintf("no active enrollment of student %d in course %d", cmd.StudentID, cmd.CourseID))
		}
		if err != nil {
			return err
		}

		result, err = applyProgress(ctx, uow, e, p)
		return err
	})
	if err != nil {
		return nil, internalize("enrollment", "UpdateProgressByStudentCourse", err)
	}

	h.emit(cmd.CorrelationID, result)
	return result, nil
}

// applyProgress сохраняет новое значение. Повтор того же значения ничего
// не записывает.
func applyProgress(ctx context.Context, uow enrollment.UnitOfWork, e *enrollment.Enrollment, p shared.Progress) (*UpdateProgressResult, error) {
	old := e.Progress
	if old != p {
		e.SetProgress(p)
		if err := uow.Enrollments().UpdateProgress(ctx, e); err != nil {
			return nil, err
		}
	}

	return &UpdateProgressResult{
		EnrollmentID: e.ID,
		OldProgress:  old.Int(),
		Progress:     e.Progress.Int(),
		Completed:    e.Completed,
	}, nil
}

func (h *UpdateProgressHandler) emit(correlationID string, r *UpdateProgressResult) {
	if r.OldProgress == r.Progress {
		return
	}

	events := []shared.Event{
		shared.NewProgressUpdatedEvent(r.EnrollmentID, r.OldProgress, r.Progress, r.Completed),
	}
	if r.Completed {
		events = append(events, shared.NewEnrollmentCompletedEvent(r.EnrollmentID))
	}
	publish(h.publisher, correlationID, events...)
}
