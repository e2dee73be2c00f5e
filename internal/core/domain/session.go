package domain

import "time"

// PersistenceScope selects how long a console session outlives the login.
type PersistenceScope string

const (
	// ScopeDurable survives browser restarts ("remember me" checked).
	ScopeDurable PersistenceScope = "durable"
	// ScopeSessionOnly lasts for the browser session only.
	ScopeSessionOnly PersistenceScope = "session"
)

// ConsoleSession is the server-side record behind a logged-in browser tab.
type ConsoleSession struct {
	ID         string
	AccountID  string
	Email      string
	Role       Role
	IsLoggedIn bool
	Scope      PersistenceScope
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// IsActive reports whether the session is still valid at the supplied moment.
func (s ConsoleSession) IsActive(at time.Time) bool {
	return s.IsLoggedIn && s.ExpiresAt.After(at)
}
