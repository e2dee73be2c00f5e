package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/infra/security"
)

type resetFixture struct {
	svc      *PasswordResetService
	provider *fakeProvider
	events   *recordingPublisher
}

func newResetFixture(accounts ...domain.Account) *resetFixture {
	repo := newFakeAccountRepo(accounts...)
	provider := newFakeProvider()
	events := &recordingPublisher{}
	clock := newFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewPasswordResetService(repo, provider, events, security.DefaultPasswordPolicy(), testLinks, nil)
	svc.now = clock.Now

	return &resetFixture{svc: svc, provider: provider, events: events}
}

func TestRequestResetSendsEmailAndPublishes(t *testing.T) {
	fx := newResetFixture(verifiedAccount())

	if err := fx.svc.RequestReset(context.Background(), "jane@example.com"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}

	if len(fx.provider.sentReset) != 1 || fx.provider.sentReset[0] != "jane@example.com" {
		t.Errorf("reset emails = %v", fx.provider.sentReset)
	}
	if len(fx.events.resets) != 1 {
		t.Fatalf("reset events = %d, want 1", len(fx.events.resets))
	}
	if fx.events.resets[0].MaskedDestination == "jane@example.com" {
		t.Error("event must carry a masked destination")
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	fx := newResetFixture()

	err := fx.svc.RequestReset(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if len(fx.provider.sentReset) != 0 {
		t.Error("no email may be sent for an unknown address")
	}
}

func TestRequestResetRejectsMalformedEmail(t *testing.T) {
	fx := newResetFixture()

	var fieldErrs security.FieldErrors
	if err := fx.svc.RequestReset(context.Background(), "nonsense"); !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
}

func TestConfirmResetRedeemsCode(t *testing.T) {
	fx := newResetFixture()

	if err := fx.svc.ConfirmReset(context.Background(), "code-1", "Tr1cky&Unusual", "Tr1cky&Unusual"); err != nil {
		t.Fatalf("ConfirmReset: %v", err)
	}
}

func TestConfirmResetRejectsWeakPassword(t *testing.T) {
	fx := newResetFixture()

	err := fx.svc.ConfirmReset(context.Background(), "code-1", "weak", "weak")
	var fieldErrs security.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
}

func TestConfirmResetRejectsMismatchedConfirmation(t *testing.T) {
	fx := newResetFixture()

	err := fx.svc.ConfirmReset(context.Background(), "code-1", "Tr1cky&Unusual", "Different&0ne")
	var fieldErrs security.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
}

func TestConfirmResetInvalidCode(t *testing.T) {
	fx := newResetFixture()
	fx.provider.confirmErr = domain.NewProviderError(domain.ProviderErrInvalidActionCode, "code expired", nil)

	err := fx.svc.ConfirmReset(context.Background(), "stale", "Tr1cky&Unusual", "Tr1cky&Unusual")
	if !errors.Is(err, ErrInvalidActionCode) {
		t.Fatalf("expected ErrInvalidActionCode, got %v", err)
	}
}
