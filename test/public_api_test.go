package test

import (
	"context"
	"net/http"
	"testing"

	"github.com/zetsy/authkit"
	"github.com/zetsy/authkit/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = authkit.New

	var _ *authkit.Engine
	var _ authkit.Config
	var _ authkit.User
	var _ authkit.AuthResult
	var _ authkit.RegisterResult
	var _ authkit.LoginResult
	var _ authkit.VerifyEmailResult
	var _ authkit.AuditSink
	var _ authkit.MetricsSnapshot

	var _ error = authkit.ErrDuplicateUser
	var _ error = authkit.ErrUserNotFound
	var _ error = authkit.ErrInvalidCredentials
	var _ error = authkit.ErrInvalidOrExpiredToken
	var _ error = authkit.ErrTokenExpired
	var _ error = authkit.ErrTokenInvalid
	var _ error = authkit.ErrTokenMalformed
	var _ error = authkit.ErrNotifierFailure
	var _ error = authkit.ErrStoreUnavailable

	var _ func(*authkit.Engine) func(http.Handler) http.Handler = middleware.Guard

	var _ func(*authkit.Engine, context.Context, authkit.RegisterRequest) (*authkit.RegisterResult, error) = (*authkit.Engine).Register
	var _ func(*authkit.Engine, context.Context, authkit.LoginRequest) (*authkit.LoginResult, error) = (*authkit.Engine).Login
	var _ func(*authkit.Engine, context.Context, string) (*authkit.VerifyEmailResult, error) = (*authkit.Engine).VerifyEmail
	var _ func(*authkit.Engine, context.Context, string) error = (*authkit.Engine).RequestPasswordReset
	var _ func(*authkit.Engine, context.Context, string, string) (string, error) = (*authkit.Engine).ConfirmPasswordReset
	var _ func(*authkit.Engine, context.Context, string) (*authkit.AuthResult, error) = (*authkit.Engine).ValidateAccess
}
