package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

func newAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewPasswordAuthenticator(store, bcrypt.MinCost)
}

func TestPasswordAuthenticator(t *testing.T) {
	a := newAuthenticator(t)
	ctx := context.Background()

	user, err := a.Register(ctx, "  Alice@Example.com ", " Alice ", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" || user.DisplayName != "Alice" {
		t.Errorf("input not normalized: %+v", user)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in clear")
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "correct horse", nil},
		{"case-insensitive email", "ALICE@example.com", "correct horse", nil},
		{"wrong password", "alice@example.com", "wrong horse", ErrInvalidCredentials},
		{"unknown user", "bob@example.com", "correct horse", ErrInvalidCredentials},
		{"malformed email", "not-an-email", "correct horse", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != user.ID {
				t.Errorf("Authenticate() returned %s, want %s", got.ID, user.ID)
			}
		})
	}
}

func TestPasswordAuthenticator_RegisterRejects(t *testing.T) {
	a := newAuthenticator(t)
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice@example.com", "Alice", "password1"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name, email, displayName, password string
		wantErr                            error
	}{
		{"duplicate email", "ALICE@example.com", "Alice 2", "password1", ErrEmailExists},
		{"short password", "bob@example.com", "Bob", "short", ErrWeakPassword},
		{"long password", "bob@example.com", "Bob", strings.Repeat("p", MaxPasswordLength+1), ErrPasswordTooLong},
		{"blank name", "bob@example.com", "   ", "password1", ErrMissingName},
		{"bad email", "bob at example", "Bob", "password1", ErrInvalidEmail},
		{"display form email", "Bob <bob@example.com>", "Bob", "password1", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.email, tt.displayName, tt.password); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	longest := strings.Repeat("p", MaxPasswordLength)
	if _, err := a.Register(ctx, "carol@example.com", "Carol", longest); err != nil {
		t.Fatalf("Register with a %d-byte password failed: %v", MaxPasswordLength, err)
	}
	if _, err := a.Authenticate(ctx, "carol@example.com", longest); err != nil {
		t.Errorf("Authenticate with the longest password failed: %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret-key-that-is-long-enough", time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID() != "user-1" || claims.Email != "alice@example.com" || claims.Issuer != Issuer {
		t.Errorf("unexpected claims %+v", claims)
	}

	t.Run("tampered token", func(t *testing.T) {
		if _, err := m.Validate(token + "x"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewJWTManager("a-completely-different-secret-key", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate(strings.Repeat("a", 20)); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
