// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a command or query carries exactly one
// of them, so callers can branch with errors.Is().
var (
	ErrNotFound     = errors.New("entity not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrInternal     = errors.New("internal error")

	// ErrConcurrentModification is reported by a store when a transaction lost
	// a race (serialization failure, deadlock). The operation may be retried.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// Error reasons. They refine a kind and are matched the same way.
var (
	ErrAlreadyEnrolled   = errors.New("student is already enrolled in this course")
	ErrCourseFull        = errors.New("course enrollment capacity reached")
	ErrLateEnrollment    = errors.New("enrollment date is after course start")
	ErrProgressRange     = errors.New("progress must be between 0 and 100")
	ErrInvalidDateRange  = errors.New("end date must be after start date")
	ErrCapBelowEnrolled  = errors.New("enrollment cap is below current enrollment count")
	ErrInvalidLength     = errors.New("value length out of range")
	ErrValueOutOfRange   = errors.New("value out of range")
	ErrEmptyValue        = errors.New("value cannot be empty")
	ErrInvalidID         = errors.New("invalid ID")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // "student", "course", "enrollment"
	Op      string // Operation that failed, e.g. "Enroll", "SoftDelete"
	Kind    error  // One of the error kinds above
	Reason  error  // Optional refinement (ErrCourseFull, ErrProgressRange, ...)
	Field   string // Offending field for validation errors
	ID      int64  // Entity ID for not-found errors
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching on the kind, the reason and the cause.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Reason != nil && errors.Is(e.Reason, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// Constructors per kind
// ══════════════════════════════════════════════════════════════════════════════

// NotFound reports a missing or soft-deleted entity.
func NotFound(domain, op string, id int64) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrNotFound,
		ID:      id,
		Message: fmt.Sprintf("%s %d not found", domain, id),
	}
}

// Validation reports a field that failed input validation.
func Validation(domain, op, field string, reason error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrValidation,
		Reason:  reason,
		Field:   field,
		Message: fmt.Sprintf("%s: %v", field, reason),
	}
}

// Conflict reports an operation that clashes with existing state.
func Conflict(domain, op string, reason error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrConflict,
		Reason:  reason,
		Message: reason.Error(),
	}
}

// InvalidState reports an operation that is not allowed in the current state.
func InvalidState(domain, op string, reason error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    ErrInvalidState,
		Reason:  reason,
		Message: reason.Error(),
	}
}

// Internal wraps a store or infrastructure failure. The cause is kept for
// logging; Message stays generic.
func Internal(domain, op string, err error) *DomainError {
	return WrapError(domain, op, ErrInternal, "internal error", err)
}

// ══════════════════════════════════════════════════════════════════════════════
// Predicates
// ══════════════════════════════════════════════════════════════════════════════

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidState checks if the error is an invalid state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsDomain reports whether err carries one of the client-facing kinds.
// Anything else is treated as internal.
func IsDomain(err error) bool {
	return IsNotFound(err) || IsValidation(err) || IsConflict(err) || IsInvalidState(err)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// AsDomainError extracts the *DomainError from the chain, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
