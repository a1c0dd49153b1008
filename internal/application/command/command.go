// Package command содержит изменяющие операции (CQRS - Commands).
// Каждая команда выполняется в одной транзакции хранилища; доменные
// события публикуются только после успешного коммита.
package command

import (
	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
)

// internalize оставляет ошибки клиентских видов как есть, а всё остальное
// (сбои хранилища, отмена контекста) заворачивает в shared.ErrInternal.
func internalize(domain, op string, err error) error {
	if err == nil || shared.IsDomain(err) {
		return err
	}
	if de, ok := shared.AsDomainError(err); ok && de.Kind == shared.ErrInternal {
		return err
	}
	return shared.Internal(domain, op, err)
}

// publish рассылает события. Ошибки подписчиков не влияют на результат
// уже закоммиченной команды.
func publish(p shared.EventPublisher, correlationID string, events ...shared.Event) {
	if p == nil {
		return
	}
	for _, e := range events {
		if correlationID != "" {
			e = withCorrelation(e, correlationID)
		}
		_ = p.Publish(e)
	}
}

func withCorrelation(e shared.Event, id string) shared.Event {
	switch ev := e.(type) {
	case shared.StudentChangedEvent:
		ev.BaseEvent = ev.BaseEvent.WithCorrelationID(id)
		return ev
	case shared.CourseChangedEvent:
		ev.BaseEvent = ev.BaseEvent.WithCorrelationID(id)
		return ev
	case shared.EnrollmentCreatedEvent:
		ev.BaseEvent = ev.BaseEvent.WithCorrelationID(id)
		return ev
	case shared.ProgressUpdatedEvent:
		ev.BaseEvent = ev.BaseEvent.WithCorrelationID(id)
		return ev
	case shared.EnrollmentCompletedEvent:
		ev.BaseEvent = ev.BaseEvent.WithCorrelationID(id)
		return ev
	case shared.SoftDeletedEvent:
		ev.BaseEvent = ev.BaseEvent.WithCorrelationID(id)
		return ev
	}
	return e
}
