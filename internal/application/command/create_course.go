package command

import (
	"context"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE COURSE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseCommand содержит данные нового курса.
type CreateCourseCommand struct {
	Title         string
	StartDate     time.Time
	EndDate       time.Time
	EnrollmentCap int

	CorrelationID string
}

// CreateCourseResult содержит результат создания.
type CreateCourseResult struct {
	CourseID int64
	Course   *course.Course
}

// CreateCourseHandler обрабатывает CreateCourseCommand.
type CreateCourseHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
}

// NewCreateCourseHandler создаёт обработчик.
func NewCreateCourseHandler(uow enrollment.UnitOfWorkFactory, publisher shared.EventPublisher) *CreateCourseHandler {
	return &CreateCourseHandler{uow: uow, publisher: publisher}
}

// Handle создаёт курс.
func (h *CreateCourseHandler) Handle(ctx context.Context, cmd CreateCourseCommand) (*CreateCourseResult, error) {
	c, err := course.NewCourse(course.Params{
		Title:         cmd.Title,
		StartDate:     cmd.StartDate,
		EndDate:       cmd.EndDate,
		EnrollmentCap: cmd.EnrollmentCap,
	})
	if err != nil {
		return nil, err
	}

	err = h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
		return uow.Courses().Create(ctx, c)
	})
	if err != nil {
		return nil, internalize("course", "Create", err)
	}

	publish(h.publisher, cmd.CorrelationID,
		shared.NewCourseChangedEvent(shared.EventCourseCreated, c.ID, c.Title, c.StartDate, c.EndDate, c.EnrollmentCap))

	return &CreateCourseResult{CourseID: c.ID, Course: c}, nil
}
