package flows

import (
	"context"
	"time"
)

// PasswordResetMetrics carries metric IDs needed by the reset flows.
type PasswordResetMetrics struct {
	RequestSuccess int
	RequestFailure int
	ConfirmSuccess int
	ConfirmFailure int
}

// PasswordResetEvents carries audit event names used by the reset flows.
type PasswordResetEvents struct {
	ResetRequest string
	ResetConfirm string
}

// PasswordResetErrors carries host-level sentinel errors used by the reset
// flows.
type PasswordResetErrors struct {
	EngineNotReady  error
	UserNotFound    error
	NotifierFailure error
	ResetInvalid    error
	WeakPassword    error
	Hashing         error
}

// PasswordResetDeps captures forgot-password and reset-password
// dependencies.
type PasswordResetDeps struct {
	ResetTTL          time.Duration
	MinPasswordLength int

	Now func() time.Time

	GetUserByEmail func(context.Context, string) (UserRecord, error)
	IsNotFound     func(error) bool
	MapStoreError  func(error) error

	// NewResetToken draws the opaque secret and returns the mailable
	// token plus the digest to persist.
	NewResetToken func() (token, tokenHash string, err error)
	// HashResetToken turns a presented token back into the lookup
	// digest. A decode failure means the token cannot match anything.
	HashResetToken func(string) (string, error)

	// SaveResetToken persists the digest and deadline atomically,
	// replacing any outstanding reset for the user.
	SaveResetToken func(ctx context.Context, userID, tokenHash string, expiresAt int64) error
	// ConsumeResetToken is the atomic single-use spend; it swaps in the
	// new password hash and clears the reset pair in one step.
	ConsumeResetToken func(ctx context.Context, tokenHash, newPasswordHash string) (string, error)
	IsResetNotFound   func(error) bool

	HashPassword func(string) (string, error)

	// SendResetMail delivers synchronously; its failure is surfaced to
	// the caller rather than swallowed.
	SendResetMail func(ctx context.Context, email, token string) error

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics PasswordResetMetrics
	Events  PasswordResetEvents
	Errors  PasswordResetErrors
}

// RunRequestPasswordReset executes the forgot-password flow: mint an
// opaque single-use secret, persist its digest with a deadline, and mail
// the link.
func RunRequestPasswordReset(ctx context.Context, email string, deps PasswordResetDeps) error {
	normalizePasswordResetDeps(&deps)

	if deps.GetUserByEmail == nil || deps.NewResetToken == nil ||
		deps.SaveResetToken == nil || deps.SendResetMail == nil {
		return deps.Errors.EngineNotReady
	}

	user, err := deps.GetUserByEmail(ctx, email)
	if err != nil {
		if deps.IsNotFound(err) {
			deps.MetricInc(deps.Metrics.RequestFailure)
			deps.EmitAudit(ctx, deps.Events.ResetRequest, false, "", deps.Errors.UserNotFound, func() map[string]string {
				return map[string]string{
					"email":  email,
					"reason": "user_not_found",
				}
			})
			return deps.Errors.UserNotFound
		}
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.ResetRequest, false, "", mapped, nil)
		return mapped
	}

	resetToken, tokenHash, err := deps.NewResetToken()
	if err != nil {
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.ResetRequest, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "secret_generation"}
		})
		return err
	}

	expiresAt := deps.Now().Add(deps.ResetTTL).Unix()
	if err := deps.SaveResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.ResetRequest, false, user.ID, mapped, nil)
		return mapped
	}

	// The reset mail is deliberately synchronous: a silently lost mail
	// would leave the user with a success response and no way forward.
	if err := deps.SendResetMail(ctx, user.Email, resetToken); err != nil {
		deps.MetricInc(deps.Metrics.RequestFailure)
		deps.EmitAudit(ctx, deps.Events.ResetRequest, false, user.ID, err, func() map[string]string {
			return map[string]string{"reason": "notifier_failure"}
		})
		return deps.Errors.NotifierFailure
	}

	deps.MetricInc(deps.Metrics.RequestSuccess)
	deps.EmitAudit(ctx, deps.Events.ResetRequest, true, user.ID, nil, func() map[string]string {
		return map[string]string{"email": user.Email}
	})

	return nil
}

// RunConfirmPasswordReset executes the reset-password flow. Unknown,
// expired, and already-spent tokens all report the same sentinel, so the
// endpoint never acts as a token-guessing oracle.
func RunConfirmPasswordReset(ctx context.Context, resetToken, newPassword string, deps PasswordResetDeps) (string, error) {
	normalizePasswordResetDeps(&deps)

	if deps.HashResetToken == nil || deps.HashPassword == nil || deps.ConsumeResetToken == nil {
		return "", deps.Errors.EngineNotReady
	}

	if len(newPassword) < deps.MinPasswordLength {
		deps.MetricInc(deps.Metrics.ConfirmFailure)
		deps.EmitAudit(ctx, deps.Events.ResetConfirm, false, "", deps.Errors.WeakPassword, func() map[string]string {
			return map[string]string{"reason": "password_policy"}
		})
		return "", deps.Errors.WeakPassword
	}

	tokenHash, err := deps.HashResetToken(resetToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.ConfirmFailure)
		deps.EmitAudit(ctx, deps.Events.ResetConfirm, false, "", deps.Errors.ResetInvalid, func() map[string]string {
			return map[string]string{"reason": "undecodable_token"}
		})
		return "", deps.Errors.ResetInvalid
	}

	// Hash before the consume so the store swap is one atomic step.
	newHash, err := deps.HashPassword(newPassword)
	if err != nil {
		deps.MetricInc(deps.Metrics.ConfirmFailure)
		deps.EmitAudit(ctx, deps.Events.ResetConfirm, false, "", err, func() map[string]string {
			return map[string]string{"reason": "hashing"}
		})
		return "", deps.Errors.Hashing
	}

	userID, err := deps.ConsumeResetToken(ctx, tokenHash, newHash)
	if err != nil {
		if deps.IsResetNotFound(err) {
			deps.MetricInc(deps.Metrics.ConfirmFailure)
			deps.EmitAudit(ctx, deps.Events.ResetConfirm, false, "", deps.Errors.ResetInvalid, func() map[string]string {
				return map[string]string{"reason": "no_match"}
			})
			return "", deps.Errors.ResetInvalid
		}
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.ConfirmFailure)
		deps.EmitAudit(ctx, deps.Events.ResetConfirm, false, "", mapped, nil)
		return "", mapped
	}

	deps.MetricInc(deps.Metrics.ConfirmSuccess)
	deps.EmitAudit(ctx, deps.Events.ResetConfirm, true, userID, nil, nil)

	return userID, nil
}

func normalizePasswordResetDeps(deps *PasswordResetDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ResetTTL <= 0 {
		deps.ResetTTL = time.Hour
	}
	if deps.MinPasswordLength <= 0 {
		deps.MinPasswordLength = 8
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if deps.IsNotFound == nil {
		deps.IsNotFound = func(error) bool { return false }
	}
	if deps.IsResetNotFound == nil {
		deps.IsResetNotFound = func(error) bool { return false }
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(err error) error { return err }
	}
}
