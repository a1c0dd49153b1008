// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ID is a store-assigned positive identifier.
type ID = int64

// ValidateID checks that id can refer to a stored entity.
func ValidateID(domain, op string, id int64) error {
	if id <= 0 {
		return Validation(domain, op, "id", ErrInvalidID)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// EntityKind Value Object
// ═══════════════════════════════════════════════════════════════════════════

// EntityKind names one of the three soft-deletable entity types.
type EntityKind string

const (
	KindStudent    EntityKind = "student"
	KindCourse     EntityKind = "course"
	KindEnrollment EntityKind = "enrollment"
)

// IsValid checks if the kind is one of the known kinds.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindStudent, KindCourse, KindEnrollment:
		return true
	}
	return false
}

// String returns the string representation.
func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind accepts singular or plural forms ("students", "Course").
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if !k.IsValid() {
		return "", Validation("shared", "ParseEntityKind", "kind", ErrUnknownEntityKind)
	}
	return k, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Progress is the completion percentage of an enrollment.
type Progress int

const (
	MinProgress Progress = 0
	MaxProgress Progress = 100
)

// IsValid checks if the progress value is within valid range.
func (p Progress) IsValid() bool {
	return p >= MinProgress && p <= MaxProgress
}

// Int returns the underlying int value.
func (p Progress) Int() int {
	return int(p)
}

// IsComplete reports whether the progress marks the enrollment as completed.
func (p Progress) IsComplete() bool {
	return p == MaxProgress
}

// NewProgress creates a Progress value. Unlike XP-style counters nothing is
// clamped: an out-of-range value is a validation error.
func NewProgress(value int) (Progress, error) {
	p := Progress(value)
	if !p.IsValid() {
		return 0, Validation("enrollment", "NewProgress", "progress", ErrProgressRange)
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Text Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Length limits for text fields.
const (
	MinNameLength  = 2
	MaxNameLength  = 100
	MinTitleLength = 5
	MaxTitleLength = 200
)

// NormalizeText trims value and checks its rune length against [min, max].
func NormalizeText(domain, op, field, value string, min, max int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", Validation(domain, op, field, ErrEmptyValue)
	}
	n := utf8.RuneCountInString(v)
	if n < min || n > max {
		return "", &DomainError{
			Domain:  domain,
			Op:      op,
			Kind:    ErrValidation,
			Reason:  ErrInvalidLength,
			Field:   field,
			Message: fmt.Sprintf("%s: length must be between %d and %d", field, min, max),
		}
	}
	return v, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// EnrollmentCap Value Object
// ═══════════════════════════════════════════════════════════════════════════

const (
	MinEnrollmentCap = 1
	MaxEnrollmentCap = 100
)

// ValidateEnrollmentCap checks the capacity of a course.
func ValidateEnrollmentCap(domain, op string, cap int) error {
	if cap < MinEnrollmentCap || cap > MaxEnrollmentCap {
		return &DomainError{
			Domain:  domain,
			Op:      op,
			Kind:    ErrValidation,
			Reason:  ErrValueOutOfRange,
			Field:   "enrollment_cap",
			Message: fmt.Sprintf("enrollment_cap: must be between %d and %d", MinEnrollmentCap, MaxEnrollmentCap),
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// DateRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DateRange represents the running period of a course. End is strictly after Start.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsValid checks if the range is valid.
func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.End.After(r.Start)
}

// Duration returns the duration of the range.
func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// NewDateRange creates a new DateRange with validation.
func NewDateRange(domain, op string, start, end time.Time) (DateRange, error) {
	r := DateRange{Start: start.UTC(), End: end.UTC()}
	if !r.IsValid() {
		return DateRange{}, Validation(domain, op, "end_date", ErrInvalidDateRange)
	}
	return r, nil
}
