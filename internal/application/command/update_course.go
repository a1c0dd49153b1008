package command

import (
	"context"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE COURSE COMMAND
// Меняет поля курса. Курс блокируется так же, как при приёме, поэтому
// новая вместимость сравнивается с числом записей, которое не может
// измениться до коммита.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateCourseCommand содержит новые значения всех полей курса.
type UpdateCourseCommand struct {
	CourseID      int64
	Title         string
	StartDate     time.Time
	EndDate       time.Time
	EnrollmentCap int

	CorrelationID string
}

// UpdateCourseHandler обрабатывает UpdateCourseCommand.
type UpdateCourseHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
}

// NewUpdateCourseHandler создаёт обработчик.
func NewUpdateCourseHandler(uow enrollment.UnitOfWorkFactory, publisher shared.EventPublisher) *UpdateCourseHandler {
	return &UpdateCourseHandler{uow: uow, publisher: publisher}
}

// Handle обновляет курс.
func (h *UpdateCourseHandler) Handle(ctx context.Context, cmd UpdateCourseCommand) (*course.Course, error) {
	var updated *course.Course
	err := h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		c, err := uow.Courses().GetForUpdate(ctx, cmd.CourseID)
		if err != nil {
			return err
		}

		active, err := uow.Enrollments().CountActiveByCourse(ctx, c.ID)
		if err != nil {
			return err
		}

		err = c.Revise(course.Params{
			Title:         cmd.Title,
			StartDate:     cmd.StartDate,
			EndDate:       cmd.EndDate,
			EnrollmentCap: cmd.EnrollmentCap,
		}, active)
		if err != nil {
			return err
		}

		if err := uow.Courses().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, internalize("course", "Update", err)
	}

	publish(h.publisher, cmd.CorrelationID,
		shared.NewCourseChangedEvent(shared.EventCourseUpdated, updated.ID, updated.Title,
			updated.StartDate, updated.EndDate, updated.EnrollmentCap))

	return updated, nil
}
