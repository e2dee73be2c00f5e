package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

func respondWith(t *testing.T, err error, cases []ErrorCase) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

	RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "login failed")

	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rr, resp
}

func TestMappedErrorSurfacesUnclassifiedProviderMessage(t *testing.T) {
	providerErr := domain.NewProviderError(domain.ProviderErrOther, "identity provider unavailable: quota exhausted", nil)

	rr, resp := respondWith(t, providerErr, []ErrorCase{
		{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: usecase.ErrInvalidCredentials.Error()},
	})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if resp.Error != "identity provider unavailable: quota exhausted" {
		t.Errorf("error = %q, want the provider's own message", resp.Error)
	}
}

func TestMappedErrorPrefersSentinelCases(t *testing.T) {
	wrapped := fmt.Errorf("sign in: %w", usecase.ErrInvalidCredentials)

	rr, resp := respondWith(t, wrapped, []ErrorCase{
		{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: usecase.ErrInvalidCredentials.Error()},
	})

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if resp.Error != usecase.ErrInvalidCredentials.Error() {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestMappedErrorFallsBackForUnknownErrors(t *testing.T) {
	rr, resp := respondWith(t, errors.New("pool exhausted"), nil)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if resp.Error != "login failed" {
		t.Errorf("error = %q, want the generic fallback", resp.Error)
	}
}
