package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

// SessionRepository keeps console sessions in Redis. The key TTL mirrors the
// session's own expiry so abandoned sessions clean themselves up.
type SessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository constructs a repository using the provided Redis client.
func NewSessionRepository(client *redis.Client, prefix string) *SessionRepository {
	if prefix == "" {
		prefix = "console:session"
	}
	return &SessionRepository{client: client, prefix: prefix}
}

type sessionRecord struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsLoggedIn bool      `json:"is_logged_in"`
	Scope      string    `json:"scope"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Put stores the session until its expiry moment.
func (r *SessionRepository) Put(ctx context.Context, session domain.ConsoleSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	payload, err := json.Marshal(sessionRecord{
		ID:         session.ID,
		AccountID:  session.AccountID,
		Email:      session.Email,
		Role:       string(session.Role),
		IsLoggedIn: session.IsLoggedIn,
		Scope:      string(session.Scope),
		CreatedAt:  session.CreatedAt,
		ExpiresAt:  session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Get loads a session or returns repository.ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.ConsoleSession, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &domain.ConsoleSession{
		ID:         record.ID,
		AccountID:  record.AccountID,
		Email:      record.Email,
		Role:       domain.Role(record.Role),
		IsLoggedIn: record.IsLoggedIn,
		Scope:      domain.PersistenceScope(record.Scope),
		CreatedAt:  record.CreatedAt,
		ExpiresAt:  record.ExpiresAt,
	}, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

func (r *SessionRepository) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

var _ port.SessionStore = (*SessionRepository)(nil)
