package enrollment

import (
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMISSION POLICY
// ══════════════════════════════════════════════════════════════════════════════

// CheckAdmission проверяет правила приёма, зависящие от курса:
// дату записи и наличие свободных мест. Существование студента и курса,
// а также отсутствие дубля проверяются раньше, в командном обработчике.
//
// activeEnrollments - число неудалённых записей на курс, прочитанное
// под блокировкой курса.
func CheckAdmission(c *course.Course, activeEnrollments int, requestedDate time.Time) error {
	if !c.AcceptsEnrollmentOn(requestedDate) {
		return shared.InvalidState(domainName, "Enroll", shared.ErrLateEnrollment)
	}
	if !c.HasCapacity(activeEnrollments) {
		return shared.Conflict(domainName, "Enroll", shared.ErrCourseFull)
	}
	return nil
}
