package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
	"github.com/prabodhahdev/login-signup/internal/repository"
	"github.com/prabodhahdev/login-signup/internal/usecase"
)

type guardSessionStore struct {
	sessions map[string]domain.ConsoleSession
}

func (s *guardSessionStore) Put(ctx context.Context, session domain.ConsoleSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *guardSessionStore) Get(ctx context.Context, id string) (*domain.ConsoleSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *guardSessionStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

// guardProvider satisfies the identity provider port; only GetPrincipal is
// reached during session restoration.
type guardProvider struct{}

func (guardProvider) CreateAccount(ctx context.Context, email, password string) (domain.Principal, error) {
	return domain.Principal{}, nil
}

func (guardProvider) SignIn(ctx context.Context, email, password string) (domain.Principal, error) {
	return domain.Principal{}, nil
}

func (guardProvider) SignOut(ctx context.Context, principalID string) error { return nil }

func (guardProvider) GetPrincipal(ctx context.Context, principalID string) (domain.Principal, error) {
	return domain.Principal{ID: principalID, EmailVerified: true}, nil
}

func (guardProvider) SendVerificationEmail(ctx context.Context, principalID, redirectURL string) error {
	return nil
}

func (guardProvider) ApplyActionCode(ctx context.Context, code string) error { return nil }

func (guardProvider) SendPasswordResetEmail(ctx context.Context, email, redirectURL string) error {
	return nil
}

func (guardProvider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	return nil
}

type guardFixture struct {
	router *gin.Engine
	store  *guardSessionStore
	codec  *security.SessionTokenCodec
}

// newGuardFixture mounts an admin-only route behind the session and role
// guards, the way the admin accounts group is wired.
func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := security.NewSessionTokenCodec("guard-test-key", "admin-console")
	if err != nil {
		t.Fatalf("create codec: %v", err)
	}

	store := &guardSessionStore{sessions: make(map[string]domain.ConsoleSession)}

	auth := usecase.NewAuthService(
		config.SessionSettings{CookieName: "console_session", SessionTTL: 12 * time.Hour, DurableTTL: 720 * time.Hour},
		nil,
		guardProvider{},
		store,
		nil,
		codec,
		zaptest.NewLogger(t),
	)

	router := gin.New()
	router.Use(Correlate())

	admin := router.Group("/admin")
	admin.Use(RequireSession(auth, "console_session", "/login"), RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &guardFixture{router: router, store: store, codec: codec}
}

// sessionCookie stores an active session for the role and returns its cookie.
func (fx *guardFixture) sessionCookie(t *testing.T, role domain.Role) *http.Cookie {
	t.Helper()

	now := time.Now().UTC()
	session := domain.ConsoleSession{
		ID:         "sess-" + string(role),
		AccountID:  "acc-" + string(role),
		Email:      string(role) + "@example.com",
		Role:       role,
		IsLoggedIn: true,
		Scope:      domain.ScopeSessionOnly,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	fx.store.sessions[session.ID] = session

	token, err := fx.codec.Issue(session.ID, session.Scope, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: "console_session", Value: token}
}

func (fx *guardFixture) ping(cookie *http.Cookie, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, req)
	return rr
}

func TestRoleGuardAllowsPermittedRoles(t *testing.T) {
	fx := newGuardFixture(t)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin} {
		rr := fx.ping(fx.sessionCookie(t, role), "application/json")
		if rr.Code != http.StatusOK {
			t.Errorf("role %s: status = %d, want 200", role, rr.Code)
		}
	}
}

func TestRoleGuardDeniesUserSessionWithJSON(t *testing.T) {
	fx := newGuardFixture(t)

	rr := fx.ping(fx.sessionCookie(t, domain.RoleUser), "application/json")

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Error != "insufficient permissions" {
		t.Errorf("error = %q", resp.Error)
	}
	if resp.TraceID == "" {
		t.Error("expected trace_id in denial payload")
	}
}

func TestRoleGuardBouncesBrowserToOwnDashboard(t *testing.T) {
	fx := newGuardFixture(t)

	rr := fx.ping(fx.sessionCookie(t, domain.RoleUser), "text/html,application/xhtml+xml")

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != domain.RoleUser.HomePath() {
		t.Errorf("Location = %q, want %q", got, domain.RoleUser.HomePath())
	}
}

func TestSessionGuardRejectsStaleCookie(t *testing.T) {
	fx := newGuardFixture(t)

	cookie := fx.sessionCookie(t, domain.RoleAdmin)
	fx.store.sessions = make(map[string]domain.ConsoleSession)

	rr := fx.ping(cookie, "application/json")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 once the session is gone", rr.Code)
	}
}

func TestSessionGuardRedirectsBrowserToLogin(t *testing.T) {
	fx := newGuardFixture(t)

	rr := fx.ping(nil, "text/html")

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q, want /login", got)
	}
}
