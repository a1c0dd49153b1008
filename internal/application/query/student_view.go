package query

import (
	"context"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT VIEW
// ══════════════════════════════════════════════════════════════════════════════

// StudentView - студент с числом курсов, на которые он записан.
type StudentView struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// EnrolledCoursesCount - неудалённые записи, чей курс не удалён.
	EnrolledCoursesCount int `json:"enrolled_courses_count"`
}

func toStudentView(s *student.Student, courses int) StudentView {
	return StudentView{
		ID:                   s.ID,
		FirstName:            s.FirstName,
		LastName:             s.LastName,
		EnrolledCoursesCount: courses,
	}
}

// StudentView возвращает представление студента.
func (p *Projector) StudentView(ctx context.Context, studentID int64) (*StudentView, error) {
	var view StudentView
	err := p.view(ctx, "student", "StudentView", func(uow enrollment.UnitOfWork) error {
		s, err := uow.Students().Get(ctx, studentID)
		if err != nil {
			return err
		}
		n, err := uow.Views().CourseCountByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		view = toStudentView(s, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ListStudents возвращает всех активных студентов по возрастанию ID.
func (p *Projector) ListStudents(ctx context.Context) ([]StudentView, error) {
	views := make([]StudentView, 0)
	err := p.view(ctx, "student", "ListStudents", func(uow enrollment.UnitOfWork) error {
		students, err := uow.Students().List(ctx)
		if err != nil {
			return err
		}
		counts, err := uow.Views().CourseCountsByStudent(ctx)
		if err != nil {
			return err
		}
		for _, s := range students {
			views = append(views, toStudentView(s, counts[s.ID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
