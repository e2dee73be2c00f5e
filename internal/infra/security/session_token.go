package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prabodhahdev/login-signup/internal/core/domain"
)

// ErrInvalidSessionToken is returned when a session cookie fails verification.
var ErrInvalidSessionToken = errors.New("invalid session token")

type sessionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// SessionTokenCodec signs and verifies the session cookie value. The cookie
// carries only the server-side session identifier and persistence scope; all
// other session state lives in the session store.
type SessionTokenCodec struct {
	signingKey []byte
	issuer     string
}

// NewSessionTokenCodec creates a codec with the given HMAC signing key.
func NewSessionTokenCodec(signingKey, issuer string) (*SessionTokenCodec, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("session token signing key is required")
	}
	return &SessionTokenCodec{signingKey: []byte(signingKey), issuer: issuer}, nil
}

// Issue produces a signed token for the session identifier.
func (c *SessionTokenCodec) Issue(sessionID string, scope domain.PersistenceScope, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Scope: string(scope),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Verify parses a token and returns the session identifier and scope.
func (c *SessionTokenCodec) Verify(tokenValue string) (string, domain.PersistenceScope, error) {
	var claims sessionClaims

	token, err := jwt.ParseWithClaims(tokenValue, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", "", ErrInvalidSessionToken
	}

	scope := domain.PersistenceScope(claims.Scope)
	if scope != domain.ScopeDurable && scope != domain.ScopeSessionOnly {
		scope = domain.ScopeSessionOnly
	}

	return claims.Subject, scope, nil
}
