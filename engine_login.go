package authkit

import (
	"context"
	"errors"

	internalflows "github.com/zetsy/authkit/internal/flows"
	"github.com/zetsy/authkit/store"
	"github.com/zetsy/authkit/token"
)

// LoginRequest is the credential check input. Social skips the password
// comparison entirely; the caller vouches that a third-party provider
// already proved the identity.
type LoginRequest struct {
	Email    string
	Password string
	Social   bool
}

// Login authenticates an existing account and signs a fresh token pair.
// Unknown emails fail with [ErrUserNotFound]; there is no silent account
// provisioning. A password login against a social-only account fails with
// [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	result, err := internalflows.RunLogin(ctx, internalflows.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Social:   req.Social,
	}, e.loginFlowDeps())
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         userFromFlowRecord(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

func (e *Engine) loginFlowDeps() internalflows.LoginDeps {
	deps := internalflows.LoginDeps{
		IsNotFound: func(err error) bool {
			return errors.Is(err, store.ErrNotFound)
		},
		MapStoreError: func(err error) error {
			return e.mapStoreError(err)
		},
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: internalflows.LoginMetrics{
			Success: int(MetricLoginSuccess),
			Failure: int(MetricLoginFailure),
		},
		Events: internalflows.LoginEvents{
			Login: auditEventLogin,
		},
		Errors: internalflows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			UserNotFound:       ErrUserNotFound,
			InvalidCredentials: ErrInvalidCredentials,
			Hashing:            ErrHashing,
		},
	}

	if e != nil && e.store != nil {
		deps.GetUserByEmail = func(ctx context.Context, email string) (internalflows.UserRecord, error) {
			rec, err := e.store.GetByEmail(ctx, email)
			if err != nil {
				return internalflows.UserRecord{}, err
			}
			return flowRecordFromStore(rec), nil
		}
	}
	if e != nil && e.hasher != nil {
		deps.VerifyPassword = e.hasher.Verify
	}
	if e != nil && e.tokens != nil {
		deps.IssueAccessToken = func(userID string) (string, error) {
			return e.tokens.Issue(userID, token.PurposeAccess)
		}
		deps.IssueRefreshToken = func(userID string) (string, error) {
			return e.tokens.Issue(userID, token.PurposeRefresh)
		}
	}

	return deps
}
