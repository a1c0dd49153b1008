package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      interface{}   `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
}

// Machine-readable error codes.
const (
	CodeNotFound        = "not_found"
	CodeValidation      = "validation_error"
	CodeConflict        = "conflict"
	CodeInvalidState    = "invalid_state"
	CodeInternal        = "internal_error"
	CodeTimeout         = "timeout"
	CodePayloadTooLarge = "payload_too_large"
)

// RespondOK writes a success envelope with the given status.
func RespondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, JSONResponse{
		Success:   true,
		Data:      data,
		Meta:      &ResponseMeta{Timestamp: time.Now().UTC(), Version: "v1"},
		RequestID: GetRequestID(c),
	})
}

// RespondList writes a success envelope with a total count.
func RespondList(c *gin.Context, data interface{}, total int) {
	c.JSON(200, JSONResponse{
		Success:   true,
		Data:      data,
		Meta:      &ResponseMeta{Timestamp: time.Now().UTC(), Version: "v1", TotalCount: total},
		RequestID: GetRequestID(c),
	})
}

// RespondError aborts the request with an error envelope.
func RespondError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, JSONResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta:      &ResponseMeta{Timestamp: time.Now().UTC()},
		RequestID: GetRequestID(c),
	})
}
