package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

func TestActionCodeRepositorySaveAndConsume(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewActionCodeRepository(client, "test:action")
	ctx := context.Background()

	code := port.ActionCode{
		Purpose:     port.ActionResetPassword,
		CodeHash:    "abc123",
		PrincipalID: "principal-1",
		Email:       "jane@example.com",
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   time.Now().Add(time.Hour).UTC(),
	}

	if err := repo.Save(ctx, code, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.FindByHash(ctx, port.ActionResetPassword, "abc123")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if got.PrincipalID != "principal-1" || got.Email != "jane@example.com" {
		t.Errorf("unexpected code record: %+v", got)
	}

	if err := repo.Consume(ctx, port.ActionResetPassword, "abc123"); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	// Second consume fails: codes are single use.
	if err := repo.Consume(ctx, port.ActionResetPassword, "abc123"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reuse, got %v", err)
	}
}

func TestActionCodeRepositoryPurposeIsolation(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewActionCodeRepository(client, "test:action")
	ctx := context.Background()

	code := port.ActionCode{
		Purpose:  port.ActionVerifyEmail,
		CodeHash: "abc123",
	}
	if err := repo.Save(ctx, code, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A verification code must not redeem as a password reset.
	if _, err := repo.FindByHash(ctx, port.ActionResetPassword, "abc123"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound across purposes, got %v", err)
	}
}

func TestActionCodeRepositoryExpiry(t *testing.T) {
	client, srv := newTestClient(t)
	repo := NewActionCodeRepository(client, "test:action")
	ctx := context.Background()

	code := port.ActionCode{Purpose: port.ActionVerifyEmail, CodeHash: "abc123"}
	if err := repo.Save(ctx, code, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	if _, err := repo.FindByHash(ctx, port.ActionVerifyEmail, "abc123"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected code to expire, got %v", err)
	}
}

func TestActionCodeRepositoryRejectsNonPositiveTTL(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewActionCodeRepository(client, "test:action")

	if err := repo.Save(context.Background(), port.ActionCode{Purpose: port.ActionVerifyEmail, CodeHash: "x"}, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
