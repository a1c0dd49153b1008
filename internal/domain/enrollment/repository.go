package enrollment

import (
	"context"

	"github.com/alem-hub/enrollment-hub/internal/domain/course"
	"github.com/alem-hub/enrollment-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с записями на курсы.
type Repository interface {
	// Create сохраняет новую запись и записывает назначенный ID в e.ID.
	// Если активная запись для пары студент/курс уже есть,
	// возвращает shared.ErrConflict с причиной shared.ErrAlreadyEnrolled.
	Create(ctx context.Context, e *Enrollment) error

	// Get возвращает активную запись по ID.
	Get(ctx context.Context, id int64) (*Enrollment, error)

	// GetForUpdate возвращает активную запись и блокирует её до конца транзакции.
	GetForUpdate(ctx context.Context, id int64) (*Enrollment, error)

	// FindActive возвращает активную запись пары студент/курс с блокировкой.
	// Возвращает shared.ErrNotFound, если такой нет.
	FindActive(ctx context.Context, studentID, courseID int64) (*Enrollment, error)

	// CountActiveByCourse возвращает число неудалённых записей на курс,
	// независимо от состояния студентов.
	CountActiveByCourse(ctx context.Context, courseID int64) (int, error)

	// UpdateProgress сохраняет Progress и Completed.
	UpdateProgress(ctx context.Context, e *Enrollment) error

	// SoftDelete выставляет флаг Deleted.
	// Возвращает shared.ErrNotFound, если запись не найдена или уже удалена.
	SoftDelete(ctx context.Context, id int64) error

	// List возвращает все неудалённые записи, упорядоченные по ID.
	List(ctx context.Context) ([]*Enrollment, error)
}

// ReadModel - запросы чтения, соединяющие записи с родительскими сущностями.
// Записи, чей студент или курс удалён, в результатах не участвуют.
type ReadModel interface {
	// EnrolledCountByCourse - активные записи курса с активными студентами.
	EnrolledCountByCourse(ctx context.Context, courseID int64) (int, error)

	// EnrolledCountsByCourse - то же для всех курсов сразу.
	EnrolledCountsByCourse(ctx context.Context) (map[int64]int, error)

	// CourseCountByStudent - активные записи студента на активные курсы.
	CourseCountByStudent(ctx context.Context, studentID int64) (int, error)

	// CourseCountsByStudent - то же для всех студентов сразу.
	CourseCountsByStudent(ctx context.Context) (map[int64]int, error)

	// CoursesOfStudent - активные курсы, на которые активно записан студент.
	CoursesOfStudent(ctx context.Context, studentID int64) ([]*course.Course, error)

	// StudentsOfCourse - активные студенты, активно записанные на курс.
	StudentsOfCourse(ctx context.Context, courseID int64) ([]*student.Student, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK (для транзакций)
// ══════════════════════════════════════════════════════════════════════════════

// TxMode задаёт режим транзакции.
type TxMode int

const (
	// ReadWrite - изменяющая транзакция.
	ReadWrite TxMode = iota

	// ReadOnlySnapshot - транзакция только для чтения, видящая
	// единый согласованный снимок данных.
	ReadOnlySnapshot
)

// String возвращает название режима.
func (m TxMode) String() string {
	if m == ReadOnlySnapshot {
		return "read-only"
	}
	return "read-write"
}

// UnitOfWork представляет единицу работы с транзакционной семантикой.
type UnitOfWork interface {
	Students() student.Repository
	Courses() course.Repository
	Enrollments() Repository
	Views() ReadModel
}

// UnitOfWorkFactory запускает единицы работы.
type UnitOfWorkFactory interface {
	// Run выполняет fn в транзакции. Если fn вернула ошибку, запаниковала
	// или ctx был отменён, все изменения откатываются.
	// Проигранная гонка (сериализация, дедлок) возвращается как
	// shared.ErrConcurrentModification.
	Run(ctx context.Context, mode TxMode, fn func(uow UnitOfWork) error) error
}
