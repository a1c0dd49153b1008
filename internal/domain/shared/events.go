// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are published only after the transaction that
// produced them has committed.
const (
	// Student events
	EventStudentCreated EventType = "student.created"
	EventStudentUpdated EventType = "student.updated"

	// Course events
	EventCourseCreated EventType = "course.created"
	EventCourseUpdated EventType = "course.updated"

	// Enrollment events
	EventEnrollmentCreated  EventType = "enrollment.created"
	EventProgressUpdated    EventType = "enrollment.progress_updated"
	EventEnrollmentComplete EventType = "enrollment.completed"

	// Lifecycle events
	EventEntitySoftDeleted EventType = "lifecycle.soft_deleted"

	// System events
	EventInvariantViolated EventType = "system.invariant_violated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID int64) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: strconv.FormatInt(aggregateID, 10),
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student & Course Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentChangedEvent is emitted when a student is created or updated.
type StudentChangedEvent struct {
	BaseEvent
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Payload implements Event interface.
func (e StudentChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"first_name": e.FirstName,
		"last_name":  e.LastName,
	}
}

// NewStudentChangedEvent creates a StudentChangedEvent of the given type.
func NewStudentChangedEvent(eventType EventType, studentID int64, firstName, lastName string) StudentChangedEvent {
	return StudentChangedEvent{
		BaseEvent: NewBaseEvent(eventType, studentID),
		FirstName: firstName,
		LastName:  lastName,
	}
}

// CourseChangedEvent is emitted when a course is created or updated.
type CourseChangedEvent struct {
	BaseEvent
	Title         string    `json:"title"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	EnrollmentCap int       `json:"enrollment_cap"`
}

// Payload implements Event interface.
func (e CourseChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"title":          e.Title,
		"start_date":     e.StartDate.Format(time.RFC3339),
		"end_date":       e.EndDate.Format(time.RFC3339),
		"enrollment_cap": e.EnrollmentCap,
	}
}

// NewCourseChangedEvent creates a CourseChangedEvent of the given type.
func NewCourseChangedEvent(eventType EventType, courseID int64, title string, start, end time.Time, enrollmentCap int) CourseChangedEvent {
	return CourseChangedEvent{
		BaseEvent:     NewBaseEvent(eventType, courseID),
		Title:         title,
		StartDate:     start,
		EndDate:       end,
		EnrollmentCap: enrollmentCap,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// EnrollmentCreatedEvent is emitted when a student is admitted into a course.
type EnrollmentCreatedEvent struct {
	BaseEvent
	StudentID      int64     `json:"student_id"`
	CourseID       int64     `json:"course_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Attempts       int       `json:"attempts"`
}

// Payload implements Event interface.
func (e EnrollmentCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":      e.StudentID,
		"course_id":       e.CourseID,
		"enrollment_date": e.EnrollmentDate.Format(time.RFC3339),
		"attempts":        e.Attempts,
	}
}

// NewEnrollmentCreatedEvent creates a new EnrollmentCreatedEvent.
func NewEnrollmentCreatedEvent(enrollmentID, studentID, courseID int64, date time.Time, attempts int) EnrollmentCreatedEvent {
	return EnrollmentCreatedEvent{
		BaseEvent:      NewBaseEvent(EventEnrollmentCreated, enrollmentID),
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: date,
		Attempts:       attempts,
	}
}

// ProgressUpdatedEvent is emitted when progress of an enrollment changes.
type ProgressUpdatedEvent struct {
	BaseEvent
	OldProgress int  `json:"old_progress"`
	NewProgress int  `json:"new_progress"`
	Completed   bool `json:"completed"`
}

// Payload implements Event interface.
func (e ProgressUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_progress": e.OldProgress,
		"new_progress": e.NewProgress,
		"completed":    e.Completed,
	}
}

// NewProgressUpdatedEvent creates a new ProgressUpdatedEvent.
func NewProgressUpdatedEvent(enrollmentID int64, oldProgress, newProgress int, completed bool) ProgressUpdatedEvent {
	return ProgressUpdatedEvent{
		BaseEvent:   NewBaseEvent(EventProgressUpdated, enrollmentID),
		OldProgress: oldProgress,
		NewProgress: newProgress,
		Completed:   completed,
	}
}

// EnrollmentCompletedEvent is emitted when progress reaches 100.
type EnrollmentCompletedEvent struct {
	BaseEvent
}

// Payload implements Event interface.
func (e EnrollmentCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewEnrollmentCompletedEvent creates a new EnrollmentCompletedEvent.
func NewEnrollmentCompletedEvent(enrollmentID int64) EnrollmentCompletedEvent {
	return EnrollmentCompletedEvent{BaseEvent: NewBaseEvent(EventEnrollmentComplete, enrollmentID)}
}

// ═══════════════════════════════════════════════════════════════════════════
// Lifecycle & System Events
// ═══════════════════════════════════════════════════════════════════════════

// SoftDeletedEvent is emitted when an entity is tombstoned.
type SoftDeletedEvent struct {
	BaseEvent
	Kind string `json:"kind"`
}

// Payload implements Event interface.
func (e SoftDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"kind": e.Kind}
}

// NewSoftDeletedEvent creates a new SoftDeletedEvent.
func NewSoftDeletedEvent(kind string, id int64) SoftDeletedEvent {
	return SoftDeletedEvent{
		BaseEvent: NewBaseEvent(EventEntitySoftDeleted, id),
		Kind:      kind,
	}
}

// InvariantViolatedEvent is emitted by the periodic audit when stored data
// breaks one of the aggregate invariants.
type InvariantViolatedEvent struct {
	BaseEvent
	Rule   string `json:"rule"`
	Entity string `json:"entity"`
	Detail string `json:"detail"`
}

// Payload implements Event interface.
func (e InvariantViolatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"rule":   e.Rule,
		"entity": e.Entity,
		"detail": e.Detail,
	}
}

// NewInvariantViolatedEvent creates a new InvariantViolatedEvent.
func NewInvariantViolatedEvent(rule, entity string, id int64, detail string) InvariantViolatedEvent {
	return InvariantViolatedEvent{
		BaseEvent: NewBaseEvent(EventInvariantViolated, id),
		Rule:      rule,
		Entity:    entity,
		Detail:    detail,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope serializes an event payload into an envelope.
func NewEventEnvelope(id string, event Event) (EventEnvelope, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return EventEnvelope{}, err
	}
	env := EventEnvelope{
		ID:          id,
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Version:     1,
		Payload:     payload,
	}
	if c, ok := event.(interface{ Correlation() string }); ok {
		env.CorrelationID = c.Correlation()
	}
	return env, nil
}

// Correlation returns the correlation ID attached to the event.
func (e BaseEvent) Correlation() string {
	return e.CorrelationID
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
