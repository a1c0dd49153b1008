package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// Репозиторий всегда работает в рамках транзакции (см. enrollment.UnitOfWork).
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции со студентами.
type Repository interface {
	// Create сохраняет нового студента и записывает назначенный ID в s.ID.
	Create(ctx context.Context, s *Student) error

	// Get возвращает студента по ID.
	// Возвращает ошибку вида shared.ErrNotFound, если студент не найден или удалён.
	Get(ctx context.Context, id int64) (*Student, error)

	// Update сохраняет изменённые имя и фамилию.
	// Возвращает shared.ErrNotFound, если студент не найден или удалён.
	Update(ctx context.Context, s *Student) error

	// SoftDelete выставляет флаг Deleted.
	// Возвращает shared.ErrNotFound, если студент не найден или уже удалён.
	SoftDelete(ctx context.Context, id int64) error

	// List возвращает всех неудалённых студентов, упорядоченных по ID.
	List(ctx context.Context) ([]*Student, error)
}
