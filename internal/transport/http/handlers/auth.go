package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/transport/http/middleware"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

// AuthHandler exposes the login, logout, and session endpoints.
type AuthHandler struct {
	auth     *usecase.AuthService
	accounts *usecase.AccountService
	session  config.SessionSettings
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, accounts *usecase.AccountService, session config.SessionSettings) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts, session: session}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}
}

// Login godoc
// @Summary Authenticate with email and password
// @Description Validates the credentials, enforces the lockout policy, and establishes a session cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 423 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), usecase.SignInInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: usecase.ErrInvalidCredentials.Error()},
			{Err: usecase.ErrEmailNotVerified, Status: http.StatusForbidden, Message: "verify your email before logging in"},
			{Err: usecase.ErrTooManyRequests, Status: http.StatusTooManyRequests, Message: usecase.ErrTooManyRequests.Error()},
		}, http.StatusInternalServerError, "login failed")
		return
	}

	h.setSessionCookie(c, result.Token, result.Session.Scope)

	account, err := h.accounts.Get(c.Request.Context(), result.Session.AccountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Redirect: result.RedirectPath,
		Account:  newAccountSummary(*account),
	})
}

// Logout godoc
// @Summary End the current session
// @Description Destroys the server-side session and clears the cookie.
// @Tags Authentication
// @Produce json
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.auth.SignOut(c.Request.Context(), session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to end session"))
		return
	}

	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// CurrentSession godoc
// @Summary Describe the current session
// @Description Returns the account and scope behind the session cookie.
// @Tags Authentication
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/session [get]
func (h *AuthHandler) CurrentSession(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		AccountID: session.AccountID,
		Email:     session.Email,
		Role:      string(session.Role),
		Scope:     string(session.Scope),
		ExpiresAt: session.ExpiresAt,
	})
}

// setSessionCookie writes the signed session token. Durable sessions get a
// Max-Age so the cookie survives browser restarts; session-only cookies carry
// no Max-Age and die with the browser.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, scope domain.PersistenceScope) {
	maxAge := 0
	if scope == domain.ScopeDurable {
		maxAge = int(h.session.DurableTTL.Seconds())
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, token, maxAge, "/", h.session.CookieDomain, h.session.CookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", h.session.CookieDomain, h.session.CookieSecure, true)
}
