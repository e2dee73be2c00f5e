package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithMappedError resolves the provided error against known cases or falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	if respondValidationError(c, err) {
		return
	}

	if respondLockedError(c, err) {
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	// Unclassified provider failures carry their own message to the caller
	// instead of the generic fallback.
	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) && providerErr.Kind == domain.ProviderErrOther {
		c.JSON(fallbackStatus, NewErrorResponse(c, providerErr.Error()))
		return
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondValidationError renders every field violation when the error is a
// validation failure.
func respondValidationError(c *gin.Context, err error) bool {
	var fieldErrs security.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}

	violations := make([]FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, FieldViolation{Field: fe.Field, Message: fe.Message})
	}

	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Error:   "validation failed",
		Fields:  violations,
		TraceID: traceIDStr,
	})
	return true
}

// respondLockedError renders lockout rejections with 423 Locked so the login
// form can distinguish them from bad credentials.
func respondLockedError(c *gin.Context, err error) bool {
	var locked *usecase.LockedError
	if !errors.As(err, &locked) {
		return false
	}

	resp := gin.H{
		"error":                 locked.Error(),
		"admin_unlock_required": locked.AdminUnlockRequired,
	}
	if locked.RetryAt != nil {
		resp["retry_at"] = locked.RetryAt
	}
	if traceID, ok := c.Get("trace_id"); ok {
		if id, ok := traceID.(string); ok && id != "" {
			resp["trace_id"] = id
		}
	}

	c.JSON(http.StatusLocked, resp)
	return true
}
