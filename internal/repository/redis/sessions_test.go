package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewSessionRepository(client, "test:session")
	ctx := context.Background()

	session := domain.ConsoleSession{
		ID:         "sess-1",
		AccountID:  "acc-1",
		Email:      "jane@example.com",
		Role:       domain.RoleAdmin,
		IsLoggedIn: true,
		Scope:      domain.ScopeDurable,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  time.Now().Add(time.Hour).UTC(),
	}

	if err := repo.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := repo.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.Scope != domain.ScopeDurable || !got.IsLoggedIn {
		t.Errorf("unexpected session: %+v", got)
	}
}

func TestSessionRepositoryRejectsExpired(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewSessionRepository(client, "test:session")

	session := domain.ConsoleSession{
		ID:        "sess-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	if err := repo.Put(context.Background(), session); err == nil {
		t.Fatal("expected error storing an already expired session")
	}
}

func TestSessionRepositoryGetMissing(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewSessionRepository(client, "test:session")

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepositoryTTLExpiry(t *testing.T) {
	client, srv := newTestClient(t)
	repo := NewSessionRepository(client, "test:session")
	ctx := context.Background()

	session := domain.ConsoleSession{
		ID:         "sess-1",
		IsLoggedIn: true,
		ExpiresAt:  time.Now().Add(time.Minute),
	}

	if err := repo.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	if _, err := repo.Get(ctx, "sess-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected session to expire, got %v", err)
	}
}

func TestSessionRepositoryDelete(t *testing.T) {
	client, _ := newTestClient(t)
	repo := NewSessionRepository(client, "test:session")
	ctx := context.Background()

	session := domain.ConsoleSession{
		ID:         "sess-1",
		IsLoggedIn: true,
		ExpiresAt:  time.Now().Add(time.Hour),
	}

	if err := repo.Put(ctx, session); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := repo.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "sess-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op.
	if err := repo.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}
