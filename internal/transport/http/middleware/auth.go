package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

// SessionKey is the context key for the restored console session.
const SessionKey = "console_session"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// wantsHTML reports whether the client is a browser navigation rather than
// an API caller, so guards can redirect instead of returning JSON.
func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html")
}

// RequireSession restores the session from the signed cookie and aborts
// unauthenticated requests. Browser navigations are bounced to the login
// page; API callers get a JSON 401.
func RequireSession(auth *usecase.AuthService, cookieName, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			rejectUnauthenticated(c, loginPath, "authentication required")
			return
		}

		session, err := auth.RestoreSession(c.Request.Context(), token)
		if err != nil {
			rejectUnauthenticated(c, loginPath, "session expired")
			return
		}

		c.Set(SessionKey, session)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = session.AccountID
		}

		c.Next()
	}
}

// RequireRoles checks that the restored session carries one of the allowed
// roles. Must run after RequireSession.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		session, ok := SessionFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !allowed[session.Role] {
			if wantsHTML(c) {
				c.Redirect(http.StatusSeeOther, session.Role.HomePath())
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}

func rejectUnauthenticated(c *gin.Context, loginPath, message string) {
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, loginPath)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(c, message))
}

// SessionFromContext retrieves the restored session (helper for handlers).
func SessionFromContext(c *gin.Context) (*domain.ConsoleSession, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*domain.ConsoleSession)
	return session, ok
}
