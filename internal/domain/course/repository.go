package course

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции с курсами в рамках транзакции.
type Repository interface {
	// Create сохраняет новый курс и записывает назначенный ID в c.ID.
	Create(ctx context.Context, c *Course) error

	// Get возвращает курс по ID.
	// Возвращает shared.ErrNotFound, если курс не найден или удалён.
	Get(ctx context.Context, id int64) (*Course, error)

	// GetForUpdate возвращает курс и блокирует его до конца транзакции.
	// Все операции, зависящие от числа записей на курс (приём, смена
	// вместимости), сериализуются на этой блокировке.
	GetForUpdate(ctx context.Context, id int64) (*Course, error)

	// Update сохраняет изменённые поля курса.
	Update(ctx context.Context, c *Course) error

	// SoftDelete выставляет флаг Deleted.
	// Возвращает shared.ErrNotFound, если курс не найден или уже удалён.
	SoftDelete(ctx context.Context, id int64) error

	// List возвращает все неудалённые курсы, упорядоченные по ID.
	List(ctx context.Context) ([]*Course, error)
}
