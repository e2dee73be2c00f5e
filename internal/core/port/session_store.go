package port

import (
	"context"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
)

// SessionStore persists console sessions in both persistence scopes. The
// scope is encoded in the session record; durable sessions carry a long TTL,
// session-only ones expire with the browser session window.
type SessionStore interface {
	Put(ctx context.Context, session domain.ConsoleSession) error
	Get(ctx context.Context, id string) (*domain.ConsoleSession, error)
	Delete(ctx context.Context, id string) error
}
