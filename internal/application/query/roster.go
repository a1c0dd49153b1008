package query

import (
	"context"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTERS
// Курсы студента и студенты курса. Сам студент (курс) должен быть
// активен, иначе NotFound; связи с удалённой стороной не показываются.
// ══════════════════════════════════════════════════════════════════════════════

// StudentCourseDTO - курс в списке курсов студента.
type StudentCourseDTO struct {
	CourseID  int64     `json:"course_id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// CourseStudentDTO - студент в списке участников курса.
type CourseStudentDTO struct {
	StudentID int64  `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// StudentCourses возвращает курсы, на которые активно записан студент,
// по дате начала.
func (p *Projector) StudentCourses(ctx context.Context, studentID int64) ([]StudentCourseDTO, error) {
	out := make([]StudentCourseDTO, 0)
	err := p.view(ctx, "student", "StudentCourses", func(uow enrollment.UnitOfWork) error {
		if _, err := uow.Students().Get(ctx, studentID); err != nil {
			return err
		}
		courses, err := uow.Views().CoursesOfStudent(ctx, studentID)
		if err != nil {
			return err
		}
		for _, c := range courses {
			out = append(out, StudentCourseDTO{
				CourseID:  c.ID,
				Title:     c.Title,
				StartDate: c.StartDate,
				EndDate:   c.EndDate,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CourseStudents возвращает активных студентов курса по фамилии и имени.
func (p *Projector) CourseStudents(ctx context.Context, courseID int64) ([]CourseStudentDTO, error) {
	out := make([]CourseStudentDTO, 0)
	err := p.view(ctx, "course", "CourseStudents", func(uow enrollment.UnitOfWork) error {
		if _, err := uow.Courses().Get(ctx, courseID); err != nil {
			return err
		}
		students, err := uow.Views().StudentsOfCourse(ctx, courseID)
		if err != nil {
			return err
		}
		for _, s := range students {
			out = append(out, CourseStudentDTO{
				StudentID: s.ID,
				FirstName: s.FirstName,
				LastName:  s.LastName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
