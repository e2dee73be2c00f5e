package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prabodhahdev/login-signup/internal/core/port"
	"github.com/prabodhahdev/login-signup/internal/repository"
)

// ActionCodeRepository keeps one-time email action codes in Redis, keyed by
// purpose and code hash so a verification code can never redeem a reset.
type ActionCodeRepository struct {
	client *redis.Client
	prefix string
}

// NewActionCodeRepository constructs a repository using the provided Redis client.
func NewActionCodeRepository(client *redis.Client, prefix string) *ActionCodeRepository {
	if prefix == "" {
		prefix = "console:action"
	}
	return &ActionCodeRepository{client: client, prefix: prefix}
}

// Save stores the code record with the supplied TTL.
func (r *ActionCodeRepository) Save(ctx context.Context, code port.ActionCode, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("action code ttl must be positive")
	}

	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("marshal action code: %w", err)
	}

	if err := r.client.Set(ctx, r.key(code.Purpose, code.CodeHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set action code: %w", err)
	}

	return nil
}

// FindByHash returns the record for the hashed code or repository.ErrNotFound.
func (r *ActionCodeRepository) FindByHash(ctx context.Context, purpose, codeHash string) (*port.ActionCode, error) {
	payload, err := r.client.Get(ctx, r.key(purpose, codeHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get action code: %w", err)
	}

	var code port.ActionCode
	if err := json.Unmarshal(payload, &code); err != nil {
		return nil, fmt.Errorf("unmarshal action code: %w", err)
	}

	return &code, nil
}

// Consume deletes the record, enforcing single use.
func (r *ActionCodeRepository) Consume(ctx context.Context, purpose, codeHash string) error {
	deleted, err := r.client.Del(ctx, r.key(purpose, codeHash)).Result()
	if err != nil {
		return fmt.Errorf("redis del action code: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ActionCodeRepository) key(purpose, codeHash string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, purpose, codeHash)
}

var _ port.ActionCodeStore = (*ActionCodeRepository)(nil)
