package flows

import (
	"context"
)

// VerifyEmailResult reports whose address was verified and whether it
// already was.
type VerifyEmailResult struct {
	UserID  string
	Already bool
}

// VerifyEmailMetrics carries metric IDs needed by the verification flow.
type VerifyEmailMetrics struct {
	Success int
	Failure int
}

// VerifyEmailEvents carries audit event names used by the verification
// flow.
type VerifyEmailEvents struct {
	VerifyEmail string
}

// VerifyEmailErrors carries host-level sentinel errors used by the
// verification flow.
type VerifyEmailErrors struct {
	EngineNotReady error
	UserNotFound   error
}

// VerifyEmailDeps captures email verification dependencies.
type VerifyEmailDeps struct {
	// VerifyToken validates the signed verification token and returns
	// the subject user id. Its errors already belong to the host token
	// taxonomy (expired / invalid / malformed).
	VerifyToken func(string) (string, error)

	// MarkVerified flips the flag and reports whether it was already
	// set; re-verification is a no-op success.
	MarkVerified  func(context.Context, string) (bool, error)
	IsNotFound    func(error) bool
	MapStoreError func(error) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics VerifyEmailMetrics
	Events  VerifyEmailEvents
	Errors  VerifyEmailErrors
}

// RunVerifyEmail executes the email verification flow.
func RunVerifyEmail(ctx context.Context, rawToken string, deps VerifyEmailDeps) (*VerifyEmailResult, error) {
	normalizeVerifyEmailDeps(&deps)

	if deps.VerifyToken == nil || deps.MarkVerified == nil {
		return nil, deps.Errors.EngineNotReady
	}

	userID, err := deps.VerifyToken(rawToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.VerifyEmail, false, "", err, func() map[string]string {
			return map[string]string{"reason": "bad_token"}
		})
		return nil, err
	}

	already, err := deps.MarkVerified(ctx, userID)
	if err != nil {
		if deps.IsNotFound(err) {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.VerifyEmail, false, userID, deps.Errors.UserNotFound, func() map[string]string {
				return map[string]string{"reason": "subject_gone"}
			})
			return nil, deps.Errors.UserNotFound
		}
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.VerifyEmail, false, userID, mapped, nil)
		return nil, mapped
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.VerifyEmail, true, userID, nil, func() map[string]string {
		if already {
			return map[string]string{"already_verified": "true"}
		}
		return nil
	})

	return &VerifyEmailResult{UserID: userID, Already: already}, nil
}

func normalizeVerifyEmailDeps(deps *VerifyEmailDeps) {
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
