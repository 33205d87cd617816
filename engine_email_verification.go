package authkit

import (
	"context"
	"errors"

	internalflows "github.com/zetsy/authkit/internal/flows"
	"github.com/zetsy/authkit/store"
	"github.com/zetsy/authkit/token"
)

// VerifyEmail validates a mailed verification token and flips the
// account's verified flag. Re-verifying an already verified account
// succeeds with Already set; the flag never goes back to false.
func (e *Engine) VerifyEmail(ctx context.Context, rawToken string) (*VerifyEmailResult, error) {
	result, err := internalflows.RunVerifyEmail(ctx, rawToken, e.verifyEmailFlowDeps())
	if err != nil {
		return nil, err
	}

	return &VerifyEmailResult{
		UserID:  result.UserID,
		Already: result.Already,
	}, nil
}

func (e *Engine) verifyEmailFlowDeps() internalflows.VerifyEmailDeps {
	deps := internalflows.VerifyEmailDeps{
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
		Metrics: internalflows.VerifyEmailMetrics{
			Success: int(MetricVerifyEmailSuccess),
			Failure: int(MetricVerifyEmailFailure),
		},
		Events: internalflows.VerifyEmailEvents{
			VerifyEmail: auditEventVerifyEmail,
		},
		Errors: internalflows.VerifyEmailErrors{
			EngineNotReady: ErrEngineNotReady,
			UserNotFound:   ErrUserNotFound,
		},
	}

	if e != nil && e.tokens != nil {
		deps.VerifyToken = func(raw string) (string, error) {
			subject, err := e.tokens.Verify(raw, token.PurposeVerifyEmail)
			if err != nil {
				return "", e.mapTokenError(err)
			}
			return subject, nil
		}
	}
	if e != nil && e.store != nil {
		deps.MarkVerified = e.store.MarkVerified
	}

	return deps
}
