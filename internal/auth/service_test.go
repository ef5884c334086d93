package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/belamverse/quickchat-backend/internal/store/sqlite"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      ttl,
	}

	return NewService(st, jwtConfig)
}

func TestRegister_RejectsInvalidEmail(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "password123", "X"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestRegister_RejectsInvalidPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "12345", "Alice"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestRegister_NormalizesEmailAndDetectsDuplicates(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := svc.Register(ctx, " Alice@Example.com ", "password123", "Alice")
	if err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	// Should collide because the stored email is trimmed and lowercased.
	if _, err := svc.Register(ctx, "alice@example.com", "password123", "Alice"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestLogin_RejectsWrongPassword(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_EmptyTokenIsAnonymous(t *testing.T) {
	svc := newTestService(t, time.Hour)

	identity, err := svc.Authenticate(context.Background(), "")
	if err != nil {
		t.Fatalf("empty token must not report a failure, got %v", err)
	}
	if identity.Authenticated() {
		t.Fatalf("expected anonymous identity, got %+v", identity)
	}
}

func TestAuthenticate_GarbageTokenFailsOpen(t *testing.T) {
	svc := newTestService(t, time.Hour)

	identity, err := svc.Authenticate(context.Background(), "not-a-jwt")
	if err == nil {
		t.Fatalf("expected an inspectable failure reason")
	}
	if identity.Authenticated() {
		t.Fatalf("expected anonymous fallback, got %+v", identity)
	}
}

func TestAuthenticate_ExpiredTokenFailsOpen(t *testing.T) {
	svc := newTestService(t, -time.Minute)
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	identity, err := svc.Authenticate(ctx, token)
	if err == nil {
		t.Fatalf("expected expiry to be reported")
	}
	if identity.Authenticated() {
		t.Fatalf("expected anonymous fallback for expired token, got %+v", identity)
	}
}

func TestAuthenticate_WrongSecretFailsOpen(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "password123", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	foreign, err := GenerateToken(&JWTConfig{
		Secret:   []byte("other-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}, 1)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	identity, err := svc.Authenticate(ctx, foreign)
	if err == nil {
		t.Fatalf("expected signature mismatch to be reported")
	}
	if identity.Authenticated() {
		t.Fatalf("expected anonymous fallback, got %+v", identity)
	}
}

func TestAuthenticate_ValidTokenResolvesIdentity(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice@example.com", "password123", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	identity, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !identity.Authenticated() {
		t.Fatalf("expected authenticated identity")
	}
	if identity.Email != "alice@example.com" || identity.DisplayName != "Alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Name() != "Alice" {
		t.Fatalf("expected display name, got %q", identity.Name())
	}
}

func TestAuthenticate_UnknownSubjectFailsOpen(t *testing.T) {
	svc := newTestService(t, time.Hour)
	ctx := context.Background()

	// Token signed with the right secret for a user that does not exist.
	token, err := GenerateToken(svc.jwtConfig, 9999)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	identity, err := svc.Authenticate(ctx, token)
	if err == nil {
		t.Fatalf("expected unknown subject to be reported")
	}
	if identity.Authenticated() {
		t.Fatalf("expected anonymous fallback, got %+v", identity)
	}
}
