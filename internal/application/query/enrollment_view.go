package query

import (
	"context"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
)

// EnrollmentView - запись на курс.
type EnrollmentView struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	CourseID       int64     `json:"course_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Progress       int       `json:"progress"`
	Completed      bool      `json:"completed"`
}

func toEnrollmentView(e *enrollment.Enrollment) EnrollmentView {
	return EnrollmentView{
		ID:             e.ID,
		StudentID:      e.StudentID,
		CourseID:       e.CourseID,
		EnrollmentDate: e.EnrollmentDate,
		Progress:       e.Progress.Int(),
		Completed:      e.Completed,
	}
}

// GetEnrollment возвращает неудалённую запись по ID.
func (p *Projector) GetEnrollment(ctx context.Context, enrollmentID int64) (*EnrollmentView, error) {
	var view EnrollmentView
	err := p.view(ctx, "enrollment", "GetEnrollment", func(uow enrollment.UnitOfWork) error {
		e, err := uow.Enrollments().Get(ctx, enrollmentID)
		if err != nil {
			return err
		}
		view = toEnrollmentView(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListEnrollments возвращает все неудалённые записи по возрастанию ID.
func (p *Projector) ListEnrollments(ctx context.Context) ([]EnrollmentView, error) {
	views := make([]EnrollmentView, 0)
	err := p.view(ctx, "enrollment", "ListEnrollments", func(uow enrollment.UnitOfWork) error {
		list, err := uow.Enrollments().List(ctx)
		if err != nil {
			return err
		}
		for _, e := range list {
			views = append(views, toEnrollmentView(e))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
