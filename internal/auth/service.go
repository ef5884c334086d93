package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/belamverse/quickchat-backend/internal/core"
	"github.com/belamverse/quickchat-backend/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an email that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidEmail is returned when the email doesn't meet constraints.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides authentication operations: issuing tokens via
// Register/Login and resolving bearer tokens to identities.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with a hashed password and returns a JWT.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if len(email) < 3 || len(email) > 254 || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	if len(password) < 6 {
		return "", ErrInvalidPassword
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, hashedPassword, strings.TrimSpace(displayName))
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return token, nil
}

// Authenticate resolves a bearer token to an identity. It never fails the
// caller: an empty token yields the anonymous identity with a nil error,
// and any verification or lookup failure yields the anonymous identity
// together with the cause, so callers can log it and proceed. The
// anonymous identity is rejected later, at room join.
func (s *Service) Authenticate(ctx context.Context, token string) (core.Identity, error) {
	if token == "" {
		return core.Anonymous(), nil
	}

	claims, err := ValidateToken(s.jwtConfig, token)
	if err != nil {
		return core.Anonymous(), fmt.Errorf("validate token: %w", err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return core.Anonymous(), fmt.Errorf("look up token subject %d: %w", claims.UserID, err)
	}

	return core.Identity{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

// ValidateBearer validates a token for the REST middleware and returns
// its claims. Unlike Authenticate it fails closed.
func (s *Service) ValidateBearer(token string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, token)
}
