package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/belamverse/quickchat-backend/internal/auth"
	"github.com/belamverse/quickchat-backend/internal/config"
	"github.com/belamverse/quickchat-backend/internal/core"
	"github.com/belamverse/quickchat-backend/internal/store"
	"github.com/belamverse/quickchat-backend/internal/store/sqlite"
)

// testEnv bundles a running server with the collaborators tests poke at.
type testEnv struct {
	ts       *httptest.Server
	registry *core.Registry
	auth     *auth.Service
	store    store.Store
}

// newTestEnv starts a server over an in-memory store seeded with the
// rooms "general" and "lobby".
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithStore(t, func(st store.Store) store.Store { return st })
}

// newTestEnvWithStore lets a test wrap the seeded store, e.g. to inject
// persistence failures.
func newTestEnvWithStore(t *testing.T, wrap func(store.Store) store.Store) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	for _, name := range []string{"general", "lobby"} {
		if _, err := st.CreateRoom(ctx, name); err != nil {
			t.Fatalf("failed to seed room %q: %v", name, err)
		}
	}

	wrapped := wrap(st)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = "test-secret-change-me"
	cfg.ReadHeaderTimeout = time.Second

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})

	registry := core.NewRegistry()
	disabledLogger := zerolog.Nop()

	server := NewServer(registry, authService, wrapped, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:       ts,
		registry: registry,
		auth:     authService,
		store:    wrapped,
	}
}

// register creates a user and returns a valid bearer token.
func (e *testEnv) register(t *testing.T, email, displayName string) string {
	t.Helper()

	token, err := e.auth.Register(context.Background(), email, "password123", displayName)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return token
}

// wsURL builds the room-scoped WebSocket URL, optionally with a token.
func (e *testEnv) wsURL(room, token string) string {
	url := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws/" + room
	if token != "" {
		url += "?token=" + token
	}
	return url
}
