// Package auth handles account credentials and session tokens.
package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator registers accounts and verifies their credentials.
type Authenticator interface {
	// Register creates an account. Returns ErrEmailExists if the normalized
	// email is already taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for valid credentials and
	// ErrInvalidCredentials otherwise, without revealing which part failed.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}

// NormalizeEmail trims and lowercases an address and checks its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
