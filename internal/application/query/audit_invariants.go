package query

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// INVARIANT AUDIT
// Проверяет сохранённые данные на нарушения правил агрегата. При
// корректной работе команд отчёт всегда пуст; непустой отчёт означает
// ручное вмешательство в базу или ошибку в коде.
// ══════════════════════════════════════════════════════════════════════════════

// Названия проверяемых правил.
const (
	RuleCompletedMatchesProgress = "completed_matches_progress"
	RuleProgressRange            = "progress_range"
	RuleSingleActiveEnrollment   = "single_active_enrollment"
	RuleCapacity                 = "capacity"
	RuleDateOrder                = "date_order"
)

// Violation - одно найденное нарушение.
type Violation struct {
	Rule     string `json:"rule"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	Detail   string `json:"detail"`
}

// AuditReport - результат проверки.
type AuditReport struct {
	CheckedAt   time.Time   `json:"checked_at"`
	Students    int         `json:"students"`
	Courses     int         `json:"courses"`
	Enrollments int         `json:"enrollments"`
	Violations  []Violation `json:"violations"`
}

// OK возвращает true, если нарушений нет.
func (r *AuditReport) OK() bool {
	return len(r.Violations) == 0
}

// AuditInvariants проверяет снимок хранилища.
func (p *Projector) AuditInvariants(ctx context.Context) (*AuditReport, error) {
	report := &AuditReport{
		CheckedAt:  time.Now().UTC(),
		Violations: make([]Violation, 0),
	}

	err := p.view(ctx, "audit", "AuditInvariants", func(uow enrollment.UnitOfWork) error {
		students, err := uow.Students().List(ctx)
		if err != nil {
			return err
		}
		courses, err := uow.Courses().List(ctx)
		if err != nil {
			return err
		}
		enrollments, err := uow.Enrollments().List(ctx)
		if err != nil {
			return err
		}

		report.Students = len(students)
		report.Courses = len(courses)
		report.Enrollments = len(enrollments)

		type pair struct{ student, course int64 }
		seen := make(map[pair]int64, len(enrollments))
		perCourse := make(map[int64]int)

		for _, e := range enrollments {
			if !e.Progress.IsValid() {
				report.add(RuleProgressRange, "enrollment", e.ID,
					fmt.Sprintf("progress %d outside [%d, %d]", e.Progress, shared.MinProgress, shared.MaxProgress))
			}
			if e.Completed != e.Progress.IsComplete() {
				report.add(RuleCompletedMatchesProgress, "enrollment", e.ID,
					fmt.Sprintf("completed=%t with progress %d", e.Completed, e.Progress))
			}

			key := pair{e.StudentID, e.CourseID}
			if first, ok := seen[key]; ok {
				report.add(RuleSingleActiveEnrollment, "enrollment", e.ID,
					fmt.Sprintf("duplicates enrollment %d for student %d in course %d", first, e.StudentID, e.CourseID))
			} else {
				seen[key] = e.ID
			}

			perCourse[e.CourseID]++
		}

		for _, c := range courses {
			if !c.EndDate.After(c.StartDate) {
				report.add(RuleDateOrder, "course", c.ID,
					fmt.Sprintf("end %s is not after start %s", c.EndDate.Format(time.RFC3339), c.StartDate.Format(time.RFC3339)))
			}
			if n := perCourse[c.ID]; n > c.EnrollmentCap {
				report.add(RuleCapacity, "course", c.ID,
					fmt.Sprintf("%d active enrollments exceed cap %d", n, c.EnrollmentCap))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *AuditReport) add(rule, entity string, id int64, detail string) {
	r.Violations = append(r.Violations, Violation{Rule: rule, Entity: entity, EntityID: id, Detail: detail})
}
