package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/infra/config"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
)

type authFixture struct {
	svc      *AuthService
	repo     *fakeAccountRepo
	provider *fakeProvider
	sessions *fakeSessionStore
	events   *recordingPublisher
	clock    *fixedClock
}

func newAuthFixture(t *testing.T, accounts ...domain.Account) *authFixture {
	t.Helper()

	repo := newFakeAccountRepo(accounts...)
	provider := newFakeProvider()
	sessions := newFakeSessionStore()
	events := &recordingPublisher{}
	clock := newFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	lockouts := NewLockoutService(testLockoutCfg, repo, events, nil)
	lockouts.now = clock.Now

	codec, err := security.NewSessionTokenCodec("test-signing-key", "admin-console-iam")
	if err != nil {
		t.Fatalf("NewSessionTokenCodec: %v", err)
	}

	sessionCfg := config.SessionSettings{
		CookieName: "console_session",
		SigningKey: "test-signing-key",
		DurableTTL: 720 * time.Hour,
		SessionTTL: 12 * time.Hour,
	}

	svc := NewAuthService(sessionCfg, repo, provider, sessions, lockouts, codec, nil)
	svc.now = clock.Now

	return &authFixture{svc: svc, repo: repo, provider: provider, sessions: sessions, events: events, clock: clock}
}

func verifiedAccount() domain.Account {
	return domain.Account{
		ID:    "acc-1",
		Email: "jane@example.com",
		Role:  domain.RoleUser,
	}
}

func TestSignInSuccessEstablishesSessionAndRedirects(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)

	result, err := fx.svc.SignIn(context.Background(), SignInInput{
		Email:      "jane@example.com",
		Password:   "Str0ng!pass",
		RememberMe: true,
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if result.RedirectPath != "/dashboard" {
		t.Errorf("redirect = %q, want /dashboard", result.RedirectPath)
	}
	if result.Session.Scope != domain.ScopeDurable {
		t.Errorf("scope = %q, want durable", result.Session.Scope)
	}
	if !result.Session.IsLoggedIn {
		t.Error("session must be logged in")
	}
	if result.Token == "" {
		t.Error("expected a signed token")
	}

	stored, err := fx.sessions.Get(context.Background(), result.Session.ID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if stored.AccountID != "acc-1" {
		t.Errorf("session account = %q", stored.AccountID)
	}
}

func TestSignInRoleRedirects(t *testing.T) {
	cases := []struct {
		role domain.Role
		path string
	}{
		{domain.RoleUser, "/dashboard"},
		{domain.RoleAdmin, "/admin-dashboard"},
		{domain.RoleSuperAdmin, "/superadmin-dashboard"},
	}

	for _, tc := range cases {
		account := verifiedAccount()
		account.Role = tc.role

		fx := newAuthFixture(t, account)
		fx.provider.addPrincipal("acc-1", "jane@example.com", true)

		result, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"})
		if err != nil {
			t.Fatalf("%s: SignIn: %v", tc.role, err)
		}
		if result.RedirectPath != tc.path {
			t.Errorf("%s: redirect = %q, want %q", tc.role, result.RedirectPath, tc.path)
		}
	}
}

func TestSignInSessionOnlyScopeByDefault(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)

	result, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if result.Session.Scope != domain.ScopeSessionOnly {
		t.Errorf("scope = %q, want session-only", result.Session.Scope)
	}

	wantExpiry := fx.clock.Now().UTC().Add(12 * time.Hour)
	if !result.Session.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", result.Session.ExpiresAt, wantExpiry)
	}
}

func TestSignInUnverifiedEmailAborts(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", false)

	_, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	if !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	if len(fx.sessions.sessions) != 0 {
		t.Error("no session may be established for unverified email")
	}
}

func TestSignInSuccessResetsResidualCounters(t *testing.T) {
	account := verifiedAccount()
	account.FailedAttempts = 1

	fx := newAuthFixture(t, account)
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)

	if _, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	stored := fx.repo.get("acc-1")
	if stored.FailedAttempts != 0 || stored.LockUntil != nil {
		t.Errorf("residual counters not cleared: %+v", stored)
	}
}

func TestSignInWrongPasswordRecordsFailure(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)

	_, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "jane@example.com", Password: "wrong-password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if fx.repo.get("acc-1").FailedAttempts != 1 {
		t.Errorf("failed attempts = %d, want 1", fx.repo.get("acc-1").FailedAttempts)
	}
	if len(fx.events.failed) != 1 {
		t.Errorf("login failed events = %d, want 1", len(fx.events.failed))
	}
}

func TestSignInUnknownEmailDoesNotTouchCounters(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)

	_, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "nobody@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(fx.events.failed) != 0 {
		t.Error("unknown emails must not record failures")
	}
}

// Two wrong attempts lock the account; the third is rejected at the policy
// gate before any credential exchange.
func TestLockGateRejectsWithoutProviderCall(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := fx.svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "wrong-password"}); err == nil {
			t.Fatalf("attempt %d should fail", i)
		}
	}

	exchangesBefore := fx.provider.signIns

	_, err := fx.svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError, got %v", err)
	}
	if locked.AdminUnlockRequired {
		t.Error("first lockout must be temporary")
	}
	if fx.provider.signIns != exchangesBefore {
		t.Error("locked account must be rejected without a provider call")
	}
}

func TestSignInAfterLockWindowElapses(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = fx.svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "wrong-password"})
	}

	fx.clock.Advance(2 * time.Minute)

	if _, err := fx.svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"}); err != nil {
		t.Fatalf("expected login to succeed after the window, got %v", err)
	}
}

func TestSignInValidatesForm(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.SignIn(context.Background(), SignInInput{Email: "not-an-email", Password: ""})
	var fieldErrs security.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if len(fieldErrs) != 2 {
		t.Errorf("violations = %d, want 2", len(fieldErrs))
	}
}

func TestRestoreSessionRoundTrip(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)
	ctx := context.Background()

	result, err := fx.svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	session, err := fx.svc.RestoreSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if session.AccountID != "acc-1" || !session.IsLoggedIn {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestRestoreSessionRejectsGarbageToken(t *testing.T) {
	fx := newAuthFixture(t)

	if _, err := fx.svc.RestoreSession(context.Background(), "garbage"); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSignOutDestroysSession(t *testing.T) {
	fx := newAuthFixture(t, verifiedAccount())
	fx.provider.addPrincipal("acc-1", "jane@example.com", true)
	ctx := context.Background()

	result, err := fx.svc.SignIn(ctx, SignInInput{Email: "jane@example.com", Password: "Str0ng!pass"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := fx.svc.SignOut(ctx, result.Session.ID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	if _, err := fx.svc.RestoreSession(ctx, result.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after sign-out, got %v", err)
	}
	if len(fx.provider.signOuts) != 1 {
		t.Errorf("provider sign-outs = %d, want 1", len(fx.provider.signOuts))
	}

	// Signing out twice is a no-op.
	if err := fx.svc.SignOut(ctx, result.Session.ID); err != nil {
		t.Fatalf("second SignOut: %v", err)
	}
}
