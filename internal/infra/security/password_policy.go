package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const defaultMinZxcvbnScore = 2

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) *FieldError
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) *FieldError

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) *FieldError {
	return f(password)
}

// PasswordPolicy applies a sequence of password rules and returns the first
// violation.
type PasswordPolicy struct {
	rules []PasswordRule
}

// NewPasswordPolicy constructs a policy with the provided rules.
func NewPasswordPolicy(rules ...PasswordRule) *PasswordPolicy {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordPolicy{rules: copied}
}

// DefaultPasswordPolicy enforces the registration policy: character class
// requirements plus a zxcvbn strength floor.
func DefaultPasswordPolicy() *PasswordPolicy {
	return NewPasswordPolicy(
		CharacterClassRule(),
		StrengthRule(defaultMinZxcvbnScore),
	)
}

// Validate runs all rules against the password.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) *FieldError {
	if p == nil {
		return nil
	}
	for _, rule := range p.rules {
		if ctx, ok := rule.(contextualRule); ok {
			if fe := ctx.ValidateWithContext(password, userInputs); fe != nil {
				return fe
			}
			continue
		}
		if fe := rule.Validate(password); fe != nil {
			return fe
		}
	}
	return nil
}

type contextualRule interface {
	ValidateWithContext(password string, userInputs []string) *FieldError
}

// CharacterClassRule wraps the baseline length and character class check.
func CharacterClassRule() PasswordRule {
	return PasswordRuleFunc(ValidatePassword)
}

// StrengthRule rejects passwords scoring below minScore on the zxcvbn scale.
// User inputs such as the account's own email are treated as weak material.
func StrengthRule(minScore int) PasswordRule {
	return strengthRule{minScore: minScore}
}

type strengthRule struct {
	minScore int
}

func (r strengthRule) Validate(password string) *FieldError {
	return r.ValidateWithContext(password, nil)
}

func (r strengthRule) ValidateWithContext(password string, userInputs []string) *FieldError {
	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < r.minScore {
		return &FieldError{
			Field:   "password",
			Message: fmt.Sprintf("is too easy to guess (strength %d of 4, need at least %d)", result.Score, r.minScore),
		}
	}
	return nil
}
