package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/zetsy/authkit/internal"
	internalflows "github.com/zetsy/authkit/internal/flows"
	"github.com/zetsy/authkit/notify"
	"github.com/zetsy/authkit/store"
)

// RequestPasswordReset mints a single-use reset token for the account,
// persists its digest with a deadline, and mails the link. The mail send
// is synchronous; a delivery failure surfaces as [ErrNotifierFailure] so
// callers never report success for a mail that went nowhere.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	return internalflows.RunRequestPasswordReset(ctx, email, e.passwordResetFlowDeps())
}

// ConfirmPasswordReset spends a mailed reset token and installs the new
// password. The token is consumed atomically; a second confirm with the
// same token fails with [ErrInvalidOrExpiredToken], as does an expired or
// unknown one. Returns the affected user id.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) (string, error) {
	return internalflows.RunConfirmPasswordReset(ctx, resetToken, newPassword, e.passwordResetFlowDeps())
}

func (e *Engine) passwordResetFlowDeps() internalflows.PasswordResetDeps {
	var cfg Config
	if e != nil {
		cfg = e.config
	}

	deps := internalflows.PasswordResetDeps{
		ResetTTL:          cfg.PasswordReset.ResetTTL,
		MinPasswordLength: cfg.Registration.MinPasswordLength,
		Now:               time.Now,
		IsNotFound: func(err error) bool {
			return errors.Is(err, store.ErrNotFound)
		},
		IsResetNotFound: func(err error) bool {
			return errors.Is(err, store.ErrResetNotFound)
		},
		MapStoreError: func(err error) error {
			return e.mapStoreError(err)
		},
		NewResetToken: func() (string, string, error) {
			secret, err := internal.NewResetSecret()
			if err != nil {
				return "", "", err
			}
			return internal.EncodeResetToken(secret), internal.HashResetSecret(secret), nil
		},
		HashResetToken: internal.HashResetToken,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: internalflows.PasswordResetMetrics{
			RequestSuccess: int(MetricResetRequestSuccess),
			RequestFailure: int(MetricResetRequestFailure),
			ConfirmSuccess: int(MetricResetConfirmSuccess),
			ConfirmFailure: int(MetricResetConfirmFailure),
		},
		Events: internalflows.PasswordResetEvents{
			ResetRequest: auditEventResetRequest,
			ResetConfirm: auditEventResetConfirm,
		},
		Errors: internalflows.PasswordResetErrors{
			EngineNotReady:  ErrEngineNotReady,
			UserNotFound:    ErrUserNotFound,
			NotifierFailure: ErrNotifierFailure,
			ResetInvalid:    ErrInvalidOrExpiredToken,
			WeakPassword:    ErrPasswordPolicy,
			Hashing:         ErrHashing,
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
		deps.SaveResetToken = e.store.SetResetToken
		deps.ConsumeResetToken = e.store.ConsumeResetToken
	}
	if e != nil && e.hasher != nil {
		deps.HashPassword = e.hasher.Hash
	}
	if e != nil && e.mail != nil {
		deps.SendResetMail = func(ctx context.Context, email, resetToken string) error {
			return e.mail.Send(ctx, notify.Job{
				Kind:  notify.KindReset,
				Email: email,
				Token: resetToken,
			})
		}
	}

	return deps
}
