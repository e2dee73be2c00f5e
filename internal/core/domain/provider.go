package domain

import "errors"

// Principal is the identity provider's view of an authenticated subject.
type Principal struct {
	ID            string
	Email         string
	EmailVerified bool
}

// ProviderErrorKind is the closed set of identity-provider failure classes.
type ProviderErrorKind string

const (
	ProviderErrDuplicateEmail    ProviderErrorKind = "duplicate_email"
	ProviderErrInvalidCredential ProviderErrorKind = "invalid_credential"
	ProviderErrRateLimited       ProviderErrorKind = "rate_limited"
	ProviderErrInvalidActionCode ProviderErrorKind = "invalid_action_code"
	ProviderErrOther             ProviderErrorKind = "other"
)

// ProviderError is a classified identity-provider failure. Upstream flows
// branch on Kind instead of inspecting provider-specific error shapes.
type ProviderError struct {
	Kind    ProviderErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// Unwrap exposes the underlying provider failure for errors.Is/As chains.
func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewProviderError builds a classified provider error.
func NewProviderError(kind ProviderErrorKind, message string, cause error) *ProviderError {
	return &ProviderError{Kind: kind, Message: message, Cause: cause}
}

// ProviderErrorKindOf extracts the kind from err, defaulting to Other.
func ProviderErrorKindOf(err error) ProviderErrorKind {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe != nil {
		return pe.Kind
	}
	return ProviderErrOther
}
