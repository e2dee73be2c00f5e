package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/transport/http/middleware"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

// AdminAccountsHandler exposes the account management endpoints for the
// admin dashboards.
type AdminAccountsHandler struct {
	accounts *usecase.AccountService
}

// NewAdminAccountsHandler constructs AdminAccountsHandler.
func NewAdminAccountsHandler(accounts *usecase.AccountService) *AdminAccountsHandler {
	return &AdminAccountsHandler{accounts: accounts}
}

// RegisterRoutes binds the account management routes.
func (h *AdminAccountsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.POST("", h.provision)
	r.GET("/:id", h.get)
	r.PUT("/:id/role", h.updateRole)
	r.POST("/:id/unlock", h.unlock)
}

// List godoc
// @Summary List accounts
// @Description Returns accounts with optional role and lock filters plus the unpaged total.
// @Tags Accounts
// @Produce json
// @Param role query string false "Filter by role"
// @Param locked query bool false "Filter by lock state"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} AccountListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/admin/accounts [get]
func (h *AdminAccountsHandler) list(c *gin.Context) {
	filter := port.AccountFilter{}

	if role := c.Query("role"); role != "" {
		filter.Role = domain.Role(role)
	}
	if lockedParam := c.Query("locked"); lockedParam != "" {
		locked, err := strconv.ParseBool(lockedParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "locked must be true or false"))
			return
		}
		filter.Locked = &locked
	}
	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}
	if offsetParam := c.Query("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "offset must be a non-negative integer"))
			return
		}
		filter.Offset = offset
	}

	accounts, total, err := h.accounts.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list accounts"))
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, newAccountSummary(account))
	}

	c.JSON(http.StatusOK, AccountListResponse{Accounts: summaries, Total: total})
}

// Get godoc
// @Summary Get a single account
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} AccountSummary
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/accounts/{id} [get]
func (h *AdminAccountsHandler) get(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUnknownAccount, Status: http.StatusNotFound, Message: usecase.ErrUnknownAccount.Error()},
		}, http.StatusInternalServerError, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(*account))
}

// Provision godoc
// @Summary Create an account on behalf of an admin
// @Description Admins provision regular users; superadmins also provision admins. The new user must verify the email before logging in.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body ProvisionRequest true "Provision payload"
// @Success 201 {object} AccountSummary
// @Failure 400 {object} ValidationErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/accounts [post]
func (h *AdminAccountsHandler) provision(c *gin.Context) {
	actor, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid provision payload"))
		return
	}

	account, err := h.accounts.Provision(c.Request.Context(), *actor, usecase.ProvisionInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Password:  req.Password,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotAllowed, Status: http.StatusForbidden, Message: usecase.ErrRoleNotAllowed.Error()},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: usecase.ErrEmailTaken.Error()},
		}, http.StatusInternalServerError, "failed to provision account")
		return
	}

	c.JSON(http.StatusCreated, newAccountSummary(*account))
}

// UpdateRole godoc
// @Summary Change an account's role
// @Description Superadmin only. The assignable set excludes superadmin.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body RoleUpdateRequest true "Role payload"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/accounts/{id}/role [put]
func (h *AdminAccountsHandler) updateRole(c *gin.Context) {
	actor, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid role payload"))
		return
	}

	err := h.accounts.UpdateRole(c.Request.Context(), *actor, c.Param("id"), domain.Role(req.Role))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRoleNotAllowed, Status: http.StatusForbidden, Message: usecase.ErrRoleNotAllowed.Error()},
			{Err: usecase.ErrUnknownAccount, Status: http.StatusNotFound, Message: usecase.ErrUnknownAccount.Error()},
		}, http.StatusInternalServerError, "failed to update role")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role updated"})
}

// Unlock godoc
// @Summary Clear an account's lockout state
// @Description Resets every lock field at once, including the admin-unlock latch.
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/accounts/{id}/unlock [post]
func (h *AdminAccountsHandler) unlock(c *gin.Context) {
	actor, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	err := h.accounts.Unlock(c.Request.Context(), *actor, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUnknownAccount, Status: http.StatusNotFound, Message: usecase.ErrUnknownAccount.Error()},
		}, http.StatusInternalServerError, "failed to unlock account")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account unlocked"})
}
