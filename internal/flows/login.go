package flows

import (
	"context"
)

// LoginRequest is the flow-local login input.
type LoginRequest struct {
	Email    string
	Password string
	// Social bypasses the password comparison; identity was established
	// by a third-party provider before this call.
	Social bool
}

// LoginResult is the flow-local login response.
type LoginResult struct {
	User         UserRecord
	AccessToken  string
	RefreshToken string
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	Success int
	Failure int
}

// LoginEvents carries audit event names used by the login flow.
type LoginEvents struct {
	Login string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	UserNotFound       error
	InvalidCredentials error
	Hashing            error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	GetUserByEmail func(context.Context, string) (UserRecord, error)
	IsNotFound     func(error) bool
	MapStoreError  func(error) error

	// VerifyPassword reports a mismatch as (false, nil); an error means
	// the stored hash is unusable.
	VerifyPassword func(plaintext, hash string) (bool, error)

	IssueAccessToken  func(string) (string, error)
	IssueRefreshToken func(string) (string, error)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin executes the login flow. There is no silent account provisioning
// on unknown emails; callers must register first.
func RunLogin(ctx context.Context, req LoginRequest, deps LoginDeps) (*LoginResult, error) {
	normalizeLoginDeps(&deps)

	if deps.GetUserByEmail == nil || deps.VerifyPassword == nil ||
		deps.IssueAccessToken == nil || deps.IssueRefreshToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	user, err := deps.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if deps.IsNotFound(err) {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Login, false, "", deps.Errors.UserNotFound, func() map[string]string {
				return map[string]string{
					"email":  req.Email,
					"reason": "user_not_found",
				}
			})
			return nil, deps.Errors.UserNotFound
		}
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Login, false, "", mapped, nil)
		return nil, mapped
	}

	if !req.Social {
		// A social-only account has no stored hash. Password login
		// against it is a plain credential failure, never a crash.
		if user.PasswordHash == "" {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Login, false, user.ID, deps.Errors.InvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "social_only_account"}
			})
			return nil, deps.Errors.InvalidCredentials
		}

		ok, vErr := deps.VerifyPassword(req.Password, user.PasswordHash)
		if vErr != nil {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Login, false, user.ID, vErr, func() map[string]string {
				return map[string]string{"reason": "corrupt_stored_hash"}
			})
			return nil, deps.Errors.Hashing
		}
		if !ok {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Login, false, user.ID, deps.Errors.InvalidCredentials, func() map[string]string {
				return map[string]string{"reason": "password_mismatch"}
			})
			return nil, deps.Errors.InvalidCredentials
		}
	}

	access, err := deps.IssueAccessToken(user.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Login, false, user.ID, err, nil)
		return nil, err
	}
	refresh, err := deps.IssueRefreshToken(user.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Login, false, user.ID, err, nil)
		return nil, err
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Login, true, user.ID, nil, func() map[string]string {
		m := map[string]string{"email": user.Email}
		if req.Social {
			m["social"] = "true"
		}
		return m
	})

	result := &LoginResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}
	result.User.PasswordHash = ""

	return result, nil
}

func normalizeLoginDeps(deps *LoginDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.IsNotFound == nil {
		deps.IsNotFound = func(error) bool { return false }
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(err error) error { return err }
	}
}
