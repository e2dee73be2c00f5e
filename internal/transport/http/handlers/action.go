package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
)

// ActionHandler terminates the emailed action links. The provider encodes the
// purpose in the mode query parameter; this endpoint dispatches on it the way
// the emails are built.
type ActionHandler struct {
	provider port.IdentityProvider
	links    config.LinkSettings
}

// NewActionHandler constructs ActionHandler.
func NewActionHandler(provider port.IdentityProvider, links config.LinkSettings) *ActionHandler {
	return &ActionHandler{provider: provider, links: links}
}

// Handle godoc
// @Summary Handle an emailed action link
// @Description Dispatches on mode: verifyEmail redeems the code and bounces to the login page; resetPassword forwards the code to the reset form.
// @Tags Action
// @Param mode query string true "Action mode" Enums(verifyEmail, resetPassword)
// @Param oobCode query string true "Single-use action code"
// @Param continueUrl query string false "Destination after the action completes"
// @Success 303 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /action [get]
func (h *ActionHandler) Handle(c *gin.Context) {
	mode := c.Query("mode")
	code := c.Query("oobCode")
	if code == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "missing action code"))
		return
	}

	switch mode {
	case port.ActionVerifyEmail:
		if err := h.provider.ApplyActionCode(c.Request.Context(), code); err != nil {
			c.JSON(http.StatusGone, NewErrorResponse(c, "the link is invalid or has expired"))
			return
		}
		destination := c.Query("continueUrl")
		if destination == "" {
			destination = h.links.BaseURL + h.links.LoginPath
		}
		c.Redirect(http.StatusSeeOther, destination+"?verified=true")
	case port.ActionResetPassword:
		// The code is redeemed only when the new password is submitted, so
		// the form link stays valid until then.
		target := h.links.BaseURL + h.links.ResetPath + "?oobCode=" + url.QueryEscape(code)
		c.Redirect(http.StatusSeeOther, target)
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown action mode"))
	}
}
