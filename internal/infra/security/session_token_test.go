package security

import (
	"testing"
	"time"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	codec, err := NewSessionTokenCodec("test-signing-key", "admin-console-iam")
	if err != nil {
		t.Fatalf("NewSessionTokenCodec: %v", err)
	}

	token, err := codec.Issue("session-123", domain.ScopeDurable, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sessionID, scope, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sessionID != "session-123" {
		t.Errorf("session id = %q, want session-123", sessionID)
	}
	if scope != domain.ScopeDurable {
		t.Errorf("scope = %q, want %q", scope, domain.ScopeDurable)
	}
}

func TestSessionTokenRejectsWrongKey(t *testing.T) {
	issuer, _ := NewSessionTokenCodec("key-one", "admin-console-iam")
	verifier, _ := NewSessionTokenCodec("key-two", "admin-console-iam")

	token, err := issuer.Issue("session-123", domain.ScopeSessionOnly, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification to fail with a different key")
	}
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	codec, _ := NewSessionTokenCodec("test-signing-key", "admin-console-iam")

	token, err := codec.Issue("session-123", domain.ScopeSessionOnly, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, _, err := codec.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestNewSessionTokenCodecRequiresKey(t *testing.T) {
	if _, err := NewSessionTokenCodec("", "admin-console-iam"); err == nil {
		t.Fatal("expected error for empty signing key")
	}
}
