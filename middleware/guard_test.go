package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	authkit "github.com/zetsy/authkit"
	"github.com/zetsy/authkit/store"
)

func newGuardTestEngine(t *testing.T) *authkit.Engine {
	t.Helper()

	cfg := authkit.DefaultConfig()
	cfg.Token.AccessKey = []byte("guard-access-key-0123456789abcde")
	cfg.Token.RefreshKey = []byte("guard-refresh-key-0123456789abcd")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := authkit.New().
		WithConfig(cfg).
		WithStore(store.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func TestGuardAcceptsValidAccessToken(t *testing.T) {
	engine := newGuardTestEngine(t)

	reg, err := engine.Register(context.Background(), authkit.RegisterRequest{
		Email:    "guard@example.com",
		Password: "correct-password-123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	var gotUserID string
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := AuthResultFromContext(r.Context())
		if !ok {
			t.Fatal("auth result missing from context")
		}
		gotUserID = res.UserID
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotUserID != reg.User.ID {
		t.Fatalf("context user %q, expected %q", gotUserID, reg.User.ID)
	}
}

func TestGuardRejections(t *testing.T) {
	engine := newGuardTestEngine(t)

	reg, err := engine.Register(context.Background(), authkit.RegisterRequest{
		Email:    "guard2@example.com",
		Password: "correct-password-123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer garbage"},
		{name: "refresh token", header: "Bearer " + reg.RefreshToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestGuardNilEngine(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
