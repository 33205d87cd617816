package authkit

import (
	"context"
	"errors"
	"time"

	"github.com/zetsy/authkit/internal"
	internalflows "github.com/zetsy/authkit/internal/flows"
	"github.com/zetsy/authkit/notify"
	"github.com/zetsy/authkit/store"
	"github.com/zetsy/authkit/token"
)

// RegisterRequest is the account creation input. Social marks an identity
// established by a third-party provider; those accounts may carry no
// password at all.
type RegisterRequest struct {
	Email    string
	Password string
	Picture  string
	Social   bool
}

// Register creates an account, signs the initial token pair, and queues a
// verification mail in the background. A taken email fails with
// [ErrDuplicateUser]; the mail outcome never affects the result.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	result, err := internalflows.RunRegister(ctx, internalflows.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Picture:  req.Picture,
		Social:   req.Social,
	}, e.registerFlowDeps())
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		User:         userFromFlowRecord(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

func (e *Engine) registerFlowDeps() internalflows.RegisterDeps {
	var cfg Config
	if e != nil {
		cfg = e.config
	}

	deps := internalflows.RegisterDeps{
		MinPasswordLength: cfg.Registration.MinPasswordLength,
		Now:               time.Now,
		NewUserID:         internal.NewUserID,
		IsDuplicate: func(err error) bool {
			return errors.Is(err, store.ErrDuplicateEmail)
		},
		MapStoreError: func(err error) error {
			return e.mapStoreError(err)
		},
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		EmitAudit: e.emitAudit,
		Metrics: internalflows.RegisterMetrics{
			Success:      int(MetricRegisterSuccess),
			Duplicate:    int(MetricRegisterDuplicate),
			Failure:      int(MetricRegisterFailure),
			MailEnqueued: int(MetricMailEnqueued),
			MailDropped:  int(MetricMailDropped),
		},
		Events: internalflows.RegisterEvents{
			Register:         auditEventRegister,
			VerificationMail: auditEventVerificationMail,
		},
		Errors: internalflows.RegisterErrors{
			EngineNotReady: ErrEngineNotReady,
			EmailRequired:  ErrEmailRequired,
			WeakPassword:   ErrPasswordPolicy,
			DuplicateUser:  ErrDuplicateUser,
			Hashing:        ErrHashing,
		},
	}

	if e != nil && e.hasher != nil {
		deps.HashPassword = e.hasher.Hash
	}
	if e != nil && e.store != nil {
		deps.CreateUser = func(ctx context.Context, rec *internalflows.UserRecord) error {
			return e.store.Create(ctx, &store.UserRecord{
				ID:           rec.ID,
				Email:        rec.Email,
				PasswordHash: rec.PasswordHash,
				Picture:      rec.Picture,
				CreatedAt:    rec.CreatedAt,
			})
		}
	}
	if e != nil && e.tokens != nil {
		deps.IssueAccessToken = func(userID string) (string, error) {
			return e.tokens.Issue(userID, token.PurposeAccess)
		}
		deps.IssueRefreshToken = func(userID string) (string, error) {
			return e.tokens.Issue(userID, token.PurposeRefresh)
		}
		deps.IssueVerificationToken = func(userID string) (string, error) {
			return e.tokens.Issue(userID, token.PurposeVerifyEmail)
		}
	}
	if e != nil && e.mail != nil {
		deps.EnqueueVerificationMail = func(ctx context.Context, email, verifyToken string) bool {
			return e.mail.Enqueue(ctx, notify.Job{
				Kind:  notify.KindVerification,
				Email: email,
				Token: verifyToken,
			})
		}
	}

	return deps
}
