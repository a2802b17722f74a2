package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"glog/workout-server/internal/repository/memory"
)

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.NewUserRepository(memory.New()), "test-secret", time.Hour)

	user, err := svc.Register(ctx, "Ada", "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected the password hash to be stripped")
	}

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := svc.Register(ctx, "Ada", "ada@example.com", "another pass"); !errors.Is(err, ErrUserAlreadyExists) {
			t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
		}
	})

	t.Run("login and parse", func(t *testing.T) {
		token, loggedIn, err := svc.Login(ctx, "ADA@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if loggedIn.ID != user.ID {
			t.Fatalf("expected user %s, got %s", user.ID.Hex(), loggedIn.ID.Hex())
		}
		uid, err := svc.ParseToken(token)
		if err != nil {
			t.Fatalf("ParseToken: %v", err)
		}
		if uid != user.ID.Hex() {
			t.Fatalf("expected uid %s, got %s", user.ID.Hex(), uid)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "bob@example.com", "whatever"); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		past := NewAuthService(memory.NewUserRepository(memory.New()), "test-secret", time.Hour).(*authService)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.generateJWT(user)
		if err != nil {
			t.Fatalf("generateJWT: %v", err)
		}
		if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := NewAuthService(memory.NewUserRepository(memory.New()), "other-secret", time.Hour).(*authService)
		token, _ := other.generateJWT(user)
		if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})
}
