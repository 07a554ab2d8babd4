package auth

import (
	"errors"
	"regexp"
	"time"
)

// emailPattern is a pragmatic email format check. Full RFC 5322 validation
// is not attempted; the unique index on users.email is the real gate.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxNameLength is the maximum allowed display name length.
const maxNameLength = 255

// IsValidEmail checks if an email address has a plausible format.
func IsValidEmail(email string) bool {
	return len(email) <= maxNameLength && emailPattern.MatchString(email)
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccessToken represents a stored opaque bearer token binding.
//
// The raw token is returned to the client once, at issuance; only its
// SHA-256 hash is persisted. The binding is durable until revoked.
type AccessToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TokenHash  string     `json:"-"` // never serialised
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrTokenInvalid       = errors.New("invalid token")
)
