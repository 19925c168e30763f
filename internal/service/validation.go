package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	// MinUsernameLength is the minimum length for a username.
	MinUsernameLength = 3

	// MaxUsernameLength is the maximum length for a username.
	MaxUsernameLength = 32

	// MaxDisplayNameLength is the maximum length for first/last names.
	MaxDisplayNameLength = 100

	// MinPasswordLength is the minimum length for a password.
	MinPasswordLength = 8

	// MaxPasswordLength is the maximum length for a password.
	MaxPasswordLength = 128

	// MaxEmailLength is the maximum length for an email address.
	MaxEmailLength = 254
)

// ReservedUsernames contains names that cannot be registered.
// These collide with routes under /users or invite confusion.
var ReservedUsernames = map[string]bool{
	"db-ping": true,
	"health":  true,
	"readyz":  true,
	"metrics": true,
	"admin":   true,
	"root":    true,
	"system":  true,
	"support": true,
	"me":      true,
}

// validUsernamePattern matches valid username characters.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore
var validUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// emailPattern is a pragmatic email shape check, not a full RFC 5322
// parser. Deliverability can only be proven by sending mail.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateUsername validates a username for registration.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrInvalidUsername
	}

	if !validUsernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}

	// Check reserved names (case-insensitive)
	if ReservedUsernames[strings.ToLower(username)] {
		return ErrInvalidUsername
	}

	return nil
}

// ValidateEmail validates an email address shape.
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return ErrInvalidEmail
	}

	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateDisplayName validates a first or last name.
// Empty is allowed; length is bounded in runes, not bytes.
func ValidateDisplayName(name string) error {
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return ErrInvalidName
	}
	return nil
}

// ValidatePassword enforces minimum password requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
