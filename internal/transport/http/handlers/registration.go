package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/usecase"
)

// RegistrationHandler exposes the self-service sign-up endpoint.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// RegisterRoutes binds registration routes, applying optional middleware ahead of the handler.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, middlewares...)
	r.POST("/register", append(chain, h.register)...)
	r.POST("/resend-verification", h.resendVerification)
}

// Register godoc
// @Summary Register a new account
// @Description Validates every field, creates the identity, and sends a verification email. No session is established.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration payload"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *RegistrationHandler) register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: usecase.ErrEmailTaken.Error()},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		AccountID: result.AccountID,
		Email:     result.Email,
		Message:   "verification email sent, verify your email and log in",
	})
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Tags Registration
// @Accept json
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/resend-verification [post]
func (h *RegistrationHandler) resendVerification(c *gin.Context) {
	var req struct {
		AccountID string `json:"account_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.registration.ResendVerification(c.Request.Context(), req.AccountID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to send verification email"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification email sent"})
}
