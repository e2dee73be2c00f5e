package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// FieldViolation reports a single form-field validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries every field violation found in one pass so
// the form can surface them all at once.
type ValidationErrorResponse struct {
	Error   string           `json:"error"`
	Fields  []FieldViolation `json:"fields"`
	TraceID string           `json:"trace_id,omitempty"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes the account view returned by the API.
type AccountSummary struct {
	ID                  string     `json:"id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone,omitempty"`
	Role                string     `json:"role"`
	IsLocked            bool       `json:"is_locked"`
	LockUntil           *time.Time `json:"lock_until,omitempty"`
	LockoutCount        int        `json:"lockout_count"`
	AdminUnlockRequired bool       `json:"admin_unlock_required"`
	CreatedAt           time.Time  `json:"created_at"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse describes a successful login: where the browser should go
// next, plus the account behind the session.
type LoginResponse struct {
	Redirect string         `json:"redirect"`
	Account  AccountSummary `json:"account"`
}

// SessionResponse describes the restored session for the current cookie.
type SessionResponse struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Scope     string    `json:"scope"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegistrationRequest defines the sign-up payload.
type RegistrationRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegistrationResponse reports the created account and the next step.
type RegistrationResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// PasswordResetRequest represents a password reset initiation payload.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetConfirmRequest captures a password reset confirmation payload.
type PasswordResetConfirmRequest struct {
	Code            string `json:"code" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ProvisionRequest defines the admin-driven account creation payload.
type ProvisionRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

// RoleUpdateRequest changes an account's role.
type RoleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}

// AccountListResponse wraps a page of accounts plus the unpaged total.
type AccountListResponse struct {
	Accounts []AccountSummary `json:"accounts"`
	Total    int              `json:"total"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newAccountSummary converts a domain account to an API summary.
func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:                  account.ID,
		FirstName:           account.FirstName,
		LastName:            account.LastName,
		Email:               account.Email,
		Phone:               account.Phone,
		Role:                string(account.Role),
		IsLocked:            account.IsLocked,
		LockUntil:           account.LockUntil,
		LockoutCount:        account.LockoutCount,
		AdminUnlockRequired: account.AdminUnlockRequired,
		CreatedAt:           account.CreatedAt,
	}
}
