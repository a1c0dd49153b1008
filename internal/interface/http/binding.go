package http

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST MODELS
// ══════════════════════════════════════════════════════════════════════════════

var registerOnce sync.Once

// registerValidators adds the notblank rule to gin's validator and reports
// fields by their JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// Date accepts "2006-01-02" or RFC 3339. Date-only values are UTC midnight.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

type studentRequest struct {
	FirstName string `json:"first_name" binding:"required,notblank"`
	LastName  string `json:"last_name" binding:"required,notblank"`
}

type courseRequest struct {
	Title         string `json:"title" binding:"required,notblank"`
	StartDate     *Date  `json:"start_date" binding:"required"`
	EndDate       *Date  `json:"end_date" binding:"required"`
	EnrollmentCap int    `json:"enrollment_cap" binding:"required"`
}

// IDs are pointers so that an explicit 0 reaches the store and comes back
// NotFound, while an absent field fails binding.
type enrollRequest struct {
	StudentID      *int64 `json:"student_id" binding:"required"`
	CourseID       *int64 `json:"course_id" binding:"required"`
	EnrollmentDate *Date  `json:"enrollment_date"`
}

// Progress is a pointer so that 0 is distinguishable from a missing field.
type progressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}
