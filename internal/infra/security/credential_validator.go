package security

import (
	"regexp"
	"strings"
)

var (
	nameRegex  = regexp.MustCompile(`^[A-Za-z]{2,50}$`)
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^(\+\d{1,3})?\d{10,15}$`)
)

// FieldError describes a single credential field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements error for FieldError.
func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return e.Field + ": " + e.Message
}

// FieldErrors aggregates per-field violations. Fields are always checked
// independently so the caller can surface every problem at once.
type FieldErrors []FieldError

// Error implements error for FieldErrors.
func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// ValidateName checks that a name field is 2-50 alphabetic characters.
func ValidateName(field, value string) *FieldError {
	if !nameRegex.MatchString(value) {
		return &FieldError{Field: field, Message: "must be 2-50 alphabetic characters"}
	}
	return nil
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(value string) *FieldError {
	if !emailRegex.MatchString(value) {
		return &FieldError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

// ValidatePhone accepts an optional leading + and country code followed by
// 10-15 digits.
func ValidatePhone(value string) *FieldError {
	if !phoneRegex.MatchString(value) {
		return &FieldError{Field: "phone", Message: "must be a valid phone number with 10-15 digits"}
	}
	return nil
}

// ValidatePassword enforces the minimum strength policy: at least 8
// characters with one lowercase letter, one uppercase letter, one digit, and
// one special character. The message names every missing requirement.
func ValidatePassword(value string) *FieldError {
	missing := missingPasswordClasses(value)
	if len(value) >= 8 && len(missing) == 0 {
		return nil
	}

	parts := make([]string, 0, 5)
	if len(value) < 8 {
		parts = append(parts, "at least 8 characters")
	}
	parts = append(parts, missing...)

	return &FieldError{
		Field:   "password",
		Message: "must contain " + strings.Join(parts, ", "),
	}
}

func missingPasswordClasses(value string) []string {
	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	var missing []string
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSpecial {
		missing = append(missing, "a special character")
	}
	return missing
}

// ValidateConfirmPassword checks equality of password and confirmation.
func ValidateConfirmPassword(password, confirm string) *FieldError {
	if password != confirm {
		return &FieldError{Field: "confirm_password", Message: "passwords do not match"}
	}
	return nil
}

// SignUpFields carries the raw registration form values.
type SignUpFields struct {
	FirstName       string
	LastName        string
	Phone           string
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidateSignUp runs every field check and collects all violations.
func ValidateSignUp(fields SignUpFields) FieldErrors {
	var errs FieldErrors

	if fe := ValidateName("first_name", fields.FirstName); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := ValidateName("last_name", fields.LastName); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := ValidatePhone(fields.Phone); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := ValidateEmail(fields.Email); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := ValidatePassword(fields.Password); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := ValidateConfirmPassword(fields.Password, fields.ConfirmPassword); fe != nil {
		errs = append(errs, *fe)
	}

	return errs
}

// ValidateSignIn only checks well-formedness of the login form. Password
// strength is not re-checked: existing accounts may predate policy changes.
func ValidateSignIn(email, password string) FieldErrors {
	var errs FieldErrors

	if fe := ValidateEmail(email); fe != nil {
		errs = append(errs, *fe)
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "is required"})
	}

	return errs
}
