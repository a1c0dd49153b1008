// Package enrollment содержит доменную модель записи студента на курс,
// правила приёма и контракт единицы работы над агрегатом
// студент / курс / запись.
package enrollment

import (
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

const domainName = "enrollment"

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment - запись студента на курс.
//
// Инвариант: Completed == (Progress == 100). Поддерживается методом
// SetProgress, прямое изменение полей вне пакета не предполагается.
type Enrollment struct {
	ID int64

	// StudentID и CourseID неизменяемы после создания.
	StudentID int64
	CourseID  int64

	// EnrollmentDate - дата, на которую оформлена запись.
	EnrollmentDate time.Time

	// Progress - процент прохождения (0-100).
	Progress shared.Progress

	// Completed - курс пройден полностью.
	Completed bool

	// Deleted - признак мягкого удаления.
	Deleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEnrollmentParams содержит параметры для создания записи.
type NewEnrollmentParams struct {
	StudentID      int64
	CourseID       int64
	EnrollmentDate time.Time
}

// NewEnrollment создаёт запись с нулевым прогрессом.
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	if err := shared.ValidateID(domainName, "Create", params.StudentID); err != nil {
		return nil, err
	}
	if err := shared.ValidateID(domainName, "Create", params.CourseID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := params.EnrollmentDate
	if date.IsZero() {
		date = now
	}

	return &Enrollment{
		StudentID:      params.StudentID,
		CourseID:       params.CourseID,
		EnrollmentDate: date.UTC(),
		Progress:       shared.MinProgress,
		Completed:      false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BEHAVIOR
// ══════════════════════════════════════════════════════════════════════════════

// SetProgress устанавливает прогресс и пересчитывает Completed.
// Снижение прогресса допускается. Возвращает предыдущее значение.
func (e *Enrollment) SetProgress(p shared.Progress) shared.Progress {
	old := e.Progress
	e.Progress = p
	e.Completed = p.IsComplete()
	e.UpdatedAt = time.Now().UTC()
	return old
}

// IsActive возвращает true, если запись не удалена.
func (e *Enrollment) IsActive() bool {
	return !e.Deleted
}

// Clone возвращает независимую копию.
func (e *Enrollment) Clone() *Enrollment {
	c := *e
	return &c
}
