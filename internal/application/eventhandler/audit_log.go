// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"sync/atomic"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUDIT LOG HANDLER
// Пишет каждое зафиксированное событие в структурированный журнал.
//
// События приходят только после коммита транзакции, поэтому журнал
// отражает фактические изменения, а не попытки.
// Нарушения инвариантов пишутся на уровне ERROR.
// ═══════════════════════════════════════════════════════════════════════════

// AuditLogHandler журналирует доменные события.
type AuditLogHandler struct {
	log *logger.Logger

	handled    atomic.Int64
	violations atomic.Int64
}

// NewAuditLogHandler создаёт обработчик журнала.
func NewAuditLogHandler(log *logger.Logger) *AuditLogHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditLogHandler{log: log.With(logger.Component("audit_log"))}
}

// Register подписывает обработчик на все события.
func (h *AuditLogHandler) Register(sub shared.EventSubscriber) error {
	return sub.SubscribeAll(h.Handle)
}

// Handle реализует shared.EventHandler. Никогда не возвращает ошибку:
// журнал не должен мешать остальным подписчикам.
func (h *AuditLogHandler) Handle(event shared.Event) error {
	h.handled.Add(1)

	fields := []logger.Field{
		logger.String("event_type", string(event.EventType())),
		logger.String("aggregate_id", event.AggregateID()),
		logger.Time("occurred_at", event.OccurredAt()),
	}
	if c, ok := event.(interface{ Correlation() string }); ok && c.Correlation() != "" {
		fields = append(fields, logger.String(logger.RequestIDKey, c.Correlation()))
	}
	for k, v := range event.Payload() {
		fields = append(fields, logger.Any(k, v))
	}

	switch event.EventType() {
	case shared.EventInvariantViolated:
		h.violations.Add(1)
		h.log.Error("invariant violated", fields...)
	case shared.EventEnrollmentComplete:
		h.log.Info("enrollment completed", fields...)
	default:
		h.log.Info("domain event", fields...)
	}
	return nil
}

// Handled возвращает число обработанных событий.
func (h *AuditLogHandler) Handled() int64 {
	return h.handled.Load()
}

// Violations возвращает число зафиксированных нарушений инвариантов.
func (h *AuditLogHandler) Violations() int64 {
	return h.violations.Load()
}
