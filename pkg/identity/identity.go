package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrymomot/sessionkit/pkg/timestamp"
)

// User is the account record owned by the identity service.
type User struct {
	ID         string         `json:"user_id"`
	Username   string         `json:"username"`
	Email      string         `json:"email,omitempty"`
	Gender     string         `json:"gender,omitempty"`
	AvatarPath string         `json:"avatar_path,omitempty"`
	CreatedAt  timestamp.Time `json:"created_at,omitzero"`
}

// Result is the outcome of a credential check. Message is safe to show to
// the end user.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// Registration holds the fields needed to create an account.
type Registration struct {
	Username       string `json:"username"`
	CredentialHash string `json:"credential_hash"`
	Email          string `json:"email,omitempty"`
	Gender         string `json:"gender,omitempty"`
}

// Verifier checks a username and credential hash.
type Verifier interface {
	Verify(ctx context.Context, username, credentialHash string) (Result, error)
}

// Directory looks users up by username.
type Directory interface {
	Lookup(ctx context.Context, username string) (*User, error)
}

// Registrar creates accounts.
type Registrar interface {
	Register(ctx context.Context, reg Registration) (*User, error)
}

// Service is the full identity service contract.
type Service interface {
	Verifier
	Directory
	Registrar
}

// CredentialHash returns the hex SHA-256 of raw. It is the only form of a
// credential that leaves the caller.
func CredentialHash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

const msgInvalidCredentials = "invalid username or password"
