package command

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/enrollment-hub/internal/domain/enrollment"
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL STUDENT COMMAND
// Приём студента на курс. Все проверки и вставка выполняются в одной
// транзакции под блокировкой строки курса, поэтому параллельные запросы
// на один курс выстраиваются в очередь и вместимость не может быть
// превышена. Транзакция, проигравшая гонку хранилищу, повторяется целиком.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentCommand содержит данные для записи на курс.
type EnrollStudentCommand struct {
	StudentID int64
	CourseID  int64

	// EnrollmentDate - запрошенная дата записи. Нулевое значение - "сейчас".
	EnrollmentDate time.Time

	// CorrelationID для трассировки.
	CorrelationID string
}

// EnrollStudentResult содержит результат записи.
type EnrollStudentResult struct {
	EnrollmentID   int64
	EnrollmentDate time.Time

	// Attempts - сколько раз запускалась транзакция.
	Attempts int
}

// EnrollStudentHandlerConfig настраивает повторы транзакции.
type EnrollStudentHandlerConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultEnrollStudentHandlerConfig возвращает конфигурацию по умолчанию.
func DefaultEnrollStudentHandlerConfig() EnrollStudentHandlerConfig {
	return EnrollStudentHandlerConfig{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
	}
}

// EnrollStudentHandler обрабатывает EnrollStudentCommand.
type EnrollStudentHandler struct {
	uow       enrollment.UnitOfWorkFactory
	publisher shared.EventPublisher
	retrier   *retry.Retrier
	now       func() time.Time
}

// NewEnrollStudentHandler создаёт обработчик.
func NewEnrollStudentHandler(
	uow enrollment.UnitOfWorkFactory,
	publisher shared.EventPublisher,
	config EnrollStudentHandlerConfig,
) *EnrollStudentHandler {
	def := DefaultEnrollStudentHandlerConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = def.InitialDelay
	}

	return &EnrollStudentHandler{
		uow:       uow,
		publisher: publisher,
		retrier:   retry.TransactionRetrier(config.MaxAttempts, config.InitialDelay, shared.IsRetryable),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Handle выполняет запись на курс.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	date := cmd.EnrollmentDate
	if date.IsZero() {
		date = h.now()
	}

	var created *enrollment.Enrollment
	attempts := 0

	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		attempts++
		created = nil
		return h.uow.Run(ctx, enrollment.ReadWrite, func(uow enrollment.UnitOfWork) error {
			e, err := admit(ctx, uow, cmd.StudentID, cmd.CourseID, date)
			if err != nil {
				return err
			}
			created = e
			return nil
		})
	})
	if err != nil {
		if shared.IsRetryable(err) {
			// Попытки исчерпаны: клиент может повторить запрос.
			// Если за это время курс заполнился, причина известна точно.
			conflict := shared.WrapError("enrollment", "Enroll", shared.ErrConflict,
				fmt.Sprintf("admission lost %d races", attempts), err)
			if h.courseFull(ctx, cmd.CourseID) {
				conflict.Reason = shared.ErrCourseFull
				conflict.Message = shared.ErrCourseFull.Error()
			}
			return nil, conflict
		}
		return nil, internalize("enrollment", "Enroll", err)
	}

	publish(h.publisher, cmd.CorrelationID, shared.NewEnrollmentCreatedEvent(
		created.ID, created.StudentID, created.CourseID, created.EnrollmentDate, attempts))

	return &EnrollStudentResult{
		EnrollmentID:   created.ID,
		EnrollmentDate: created.EnrollmentDate,
		Attempts:       attempts,
	}, nil
}

// courseFull перечитывает вместимость курса в снимке. Ошибка чтения
// означает, что причина неизвестна.
func (h *EnrollStudentHandler) courseFull(ctx context.Context, courseID int64) bool {
	full := false
	_ = h.uow.Run(ctx, enrollment.ReadOnlySnapshot, func(uow enrollment.UnitOfWork) error {
		c, err := uow.Courses().Get(ctx, courseID)
		if err != nil {
			return err
		}
		active, err := uow.Enrollments().CountActiveByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		full = !c.HasCapacity(active)
		return nil
	})
	return full
}

// admit проверяет правила приёма в фиксированном порядке и создаёт запись.
func admit(ctx context.Context, uow enrollment.UnitOfWork, studentID, courseID int64, date time.Time) (*enrollment.Enrollment, error) {
	if _, err := uow.Students().Get(ctx, studentID); err != nil {
		return nil, err
	}

	// Блокировка курса сериализует все приёмы на него.
	c, err := uow.Courses().GetForUpdate(ctx, courseID)
	if err != nil {
		return nil, err
	}

	_, err = uow.Enrollments().FindActive(ctx, studentID, courseID)
	switch {
	case err == nil:
		return nil, shared.Conflict("enrollment", "Enroll", shared.ErrAlreadyEnrolled)
	case !shared.IsNotFound(err):
		return nil, err
	}

	active, err := uow.Enrollments().CountActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := enrollment.CheckAdmission(c, active, date); err != nil {
		return nil, err
	}

	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: date,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Enrollments().Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
