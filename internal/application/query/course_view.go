package query

import (
	"context"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE VIEW
// ══════════════════════════════════════════════════════════════════════════════

// CourseView - курс с числом активных записей.
type CourseView struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	EnrollmentCap int       `json:"enrollment_cap"`

	// EnrolledCount - неудалённые записи, чей студент не удалён.
	EnrolledCount int `json:"enrolled_count"`
}

func toCourseView(c *course.Course, enrolled int) CourseView {
	return CourseView{
		ID:            c.ID,
		Title:         c.Title,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
		EnrollmentCap: c.EnrollmentCap,
		EnrolledCount: enrolled,
	}
}

// CourseView возвращает представление курса.
func (p *Projector) CourseView(ctx context.Context, courseID int64) (*CourseView, error) {
	var view CourseView
	err := p.view(ctx, "course", "CourseView", func(uow enrollment.UnitOfWork) error {
		c, err := uow.Courses().Get(ctx, courseID)
		if err != nil {
			return err
		}
		n, err := uow.Views().EnrolledCountByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		view = toCourseView(c, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListCourses возвращает все активные курсы по возрастанию ID.
func (p *Projector) ListCourses(ctx context.Context) ([]CourseView, error) {
	views := make([]CourseView, 0)
	err := p.view(ctx, "course", "ListCourses", func(uow enrollment.UnitOfWork) error {
		courses, err := uow.Courses().List(ctx)
		if err != nil {
			return err
		}
		counts, err := uow.Views().EnrolledCountsByCourse(ctx)
		if err != nil {
			return err
		}
		for _, c := range courses {
			views = append(views, toCourseView(c, counts[c.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
