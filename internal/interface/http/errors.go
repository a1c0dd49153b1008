package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/enrollment-hub/internal/domain/shared"
	"github.com/alem-hub/enrollment-hub/internal/interface/http/handlers"
	"github.com/alem-hub/enrollment-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// statusForError maps an error kind to an HTTP status and error code.
// Late enrollment is an InvalidState and answers 400.
func statusForError(err error) (int, string) {
	switch {
	case shared.IsNotFound(err):
		return http.StatusNotFound, handlers.CodeNotFound
	case shared.IsValidation(err):
		return http.StatusBadRequest, handlers.CodeValidation
	case shared.IsConflict(err):
		return http.StatusConflict, handlers.CodeConflict
	case shared.IsInvalidState(err):
		return http.StatusBadRequest, handlers.CodeInvalidState
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, handlers.CodeTimeout
	default:
		return http.StatusInternalServerError, handlers.CodeInternal
	}
}

// fail writes an error response. Internal errors are logged with their cause
// and answered with a generic message.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusForError(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
		message := "An unexpected error occurred"
		if code == handlers.CodeTimeout {
			message = "Request timed out"
		}
		handlers.RespondError(c, status, code, message, "")
		return
	}

	message := err.Error()
	details := ""
	if de, ok := shared.AsDomainError(err); ok {
		message = de.Message
		details = de.Field
	}
	handlers.RespondError(c, status, code, message, details)
}

// failBinding reports a request body that could not be decoded or failed
// binding validation.
func (s *Server) failBinding(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		handlers.RespondError(c, http.StatusRequestEntityTooLarge, handlers.CodePayloadTooLarge, "Request body too large", "")
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fe.Field()+": "+fe.Tag())
		}
		handlers.RespondError(c, http.StatusBadRequest, handlers.CodeValidation, "Invalid request body", strings.Join(parts, "; "))
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		handlers.RespondError(c, http.StatusBadRequest, handlers.CodeValidation, "Malformed JSON", err.Error())
	default:
		handlers.RespondError(c, http.StatusBadRequest, handlers.CodeValidation, "Invalid request body", err.Error())
	}
}

// pathID parses a numeric path parameter. It writes the error response itself.
func (s *Server) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		handlers.RespondError(c, http.StatusBadRequest, handlers.CodeValidation, name+" must be an integer", name)
		return 0, false
	}
	return id, true
}
