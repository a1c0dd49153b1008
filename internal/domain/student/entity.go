// Package student содержит доменную модель студента.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

const domainName = "student"

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - участник учебных курсов.
type Student struct {
	// ID - идентификатор, назначаемый хранилищем.
	ID int64

	// FirstName - имя.
	FirstName string

	// LastName - фамилия.
	LastName string

	// Deleted - признак мягкого удаления. Однажды выставленный, не сбрасывается.
	Deleted bool

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams содержит параметры для создания нового студента.
type NewStudentParams struct {
	FirstName string
	LastName  string
}

// NewStudent создаёт нового студента с валидацией.
// ID остаётся нулевым до сохранения в репозитории.
func NewStudent(params NewStudentParams) (*Student, error) {
	first, last, err := validateNames("Create", params.FirstName, params.LastName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Student{
		FirstName: first,
		LastName:  last,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateNames(op, firstName, lastName string) (string, string, error) {
	first, err := shared.NormalizeText(domainName, op, "first_name", firstName,
		shared.MinNameLength, shared.MaxNameLength)
	if err != nil {
		return "", "", err
	}
	last, err := shared.NormalizeText(domainName, op, "last_name", lastName,
		shared.MinNameLength, shared.MaxNameLength)
	if err != nil {
		return "", "", err
	}
	return first, last, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BEHAVIOR
// ══════════════════════════════════════════════════════════════════════════════

// Rename меняет имя и фамилию студента.
func (s *Student) Rename(firstName, lastName string) error {
	first, last, err := validateNames("Update", firstName, lastName)
	if err != nil {
		return err
	}

	s.FirstName = first
	s.LastName = last
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// FullName возвращает имя и фамилию через пробел.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsActive возвращает true, если студент не удалён.
func (s *Student) IsActive() bool {
	return !s.Deleted
}

// Clone возвращает независимую копию.
func (s *Student) Clone() *Student {
	c := *s
	return &c
}
