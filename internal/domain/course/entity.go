// Package course содержит доменную модель учебного курса.
package course

import (
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

const domainName = "course"

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course - курс с ограниченным числом мест.
type Course struct {
	// ID - идентификатор, назначаемый хранилищем.
	ID int64

	// Title - название курса (5-200 символов).
	Title string

	// StartDate - дата начала. Запись на курс после этой даты запрещена.
	StartDate time.Time

	// EndDate - дата окончания, строго позже StartDate.
	EndDate time.Time

	// EnrollmentCap - максимальное число активных записей на курс.
	EnrollmentCap int

	// Deleted - признак мягкого удаления.
	Deleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Params содержит изменяемые поля курса. Используется и при создании,
// и при обновлении.
type Params struct {
	Title         string
	StartDate     time.Time
	EndDate       time.Time
	EnrollmentCap int
}

// validate нормализует и проверяет параметры.
func (p Params) validate(op string) (Params, error) {
	title, err := shared.NormalizeText(domainName, op, "title", p.Title,
		shared.MinTitleLength, shared.MaxTitleLength)
	if err != nil {
		return Params{}, err
	}

	period, err := shared.NewDateRange(domainName, op, p.StartDate, p.EndDate)
	if err != nil {
		return Params{}, err
	}

	if err := shared.ValidateEnrollmentCap(domainName, op, p.EnrollmentCap); err != nil {
		return Params{}, err
	}

	return Params{
		Title:         title,
		StartDate:     period.Start,
		EndDate:       period.End,
		EnrollmentCap: p.EnrollmentCap,
	}, nil
}

// NewCourse создаёт новый курс с валидацией.
func NewCourse(params Params) (*Course, error) {
	p, err := params.validate("Create")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Course{
		Title:         p.Title,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		EnrollmentCap: p.EnrollmentCap,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BEHAVIOR
// ══════════════════════════════════════════════════════════════════════════════

// Revise применяет новые значения полей.
// activeEnrollments - текущее число активных записей: вместимость нельзя
// опустить ниже него.
func (c *Course) Revise(params Params, activeEnrollments int) error {
	p, err := params.validate("Update")
	if err != nil {
		return err
	}

	if p.EnrollmentCap < activeEnrollments {
		return shared.Conflict(domainName, "Update", shared.ErrCapBelowEnrolled)
	}

	c.Title = p.Title
	c.StartDate = p.StartDate
	c.EndDate = p.EndDate
	c.EnrollmentCap = p.EnrollmentCap
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// AcceptsEnrollmentOn сообщает, можно ли записаться на курс в указанную дату.
// Запись в день начала разрешена.
func (c *Course) AcceptsEnrollmentOn(date time.Time) bool {
	return !date.After(c.StartDate)
}

// HasCapacity сообщает, есть ли свободное место при текущем числе записей.
func (c *Course) HasCapacity(activeEnrollments int) bool {
	return activeEnrollments < c.EnrollmentCap
}

// IsActive возвращает true, если курс не удалён.
func (c *Course) IsActive() bool {
	return !c.Deleted
}

// Clone возвращает независимую копию.
func (c *Course) Clone() *Course {
	cp := *c
	return &cp
}
