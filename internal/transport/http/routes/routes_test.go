package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prabodhahdev/login-signup/internal/infra/config"
	httproutes "github.com/prabodhahdev/login-signup/internal/transport/http/routes"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		App:     config.AppSettings{Env: "test"},
		Session: config.SessionSettings{CookieName: "console_session"},
		Links:   config.LinkSettings{BaseURL: "https://console.example.com", LoginPath: "/login", ResetPath: "/reset-password"},
	}
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	return httproutes.Register(httproutes.Dependencies{
		Config: testConfig(),
		Logger: logger,
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadyEndpointWithoutChecks(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestLogoutWithoutCookieReturnsJSONUnauthorized(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Accept", "application/json")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestBrowserNavigationWithoutCookieRedirectsToLogin(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect location = %q, want /login", loc)
	}
}
