package flows

import (
	"context"
	"time"
)

// RegisterRequest is the flow-local registration input.
type RegisterRequest struct {
	Email    string
	Password string
	Picture  string
	// Social marks an account whose identity was established by a
	// third-party provider; no local password is required.
	Social bool
}

// UserRecord is the flow-local user shape shared by register and login.
// PasswordHash is never populated on results handed back to callers.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Verified     bool
	Picture      string
	CreatedAt    int64
}

// RegisterResult is the flow-local registration response.
type RegisterResult struct {
	User         UserRecord
	AccessToken  string
	RefreshToken string
}

// RegisterMetrics carries metric IDs needed by the registration flow.
type RegisterMetrics struct {
	Success      int
	Duplicate    int
	Failure      int
	MailEnqueued int
	MailDropped  int
}

// RegisterEvents carries audit event names used by the registration flow.
type RegisterEvents struct {
	Register         string
	VerificationMail string
}

// RegisterErrors carries host-level sentinel errors used by the
// registration flow.
type RegisterErrors struct {
	EngineNotReady error
	EmailRequired  error
	WeakPassword   error
	DuplicateUser  error
	Hashing        error
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	MinPasswordLength int

	Now       func() time.Time
	NewUserID func() string

	HashPassword func(string) (string, error)

	CreateUser  func(context.Context, *UserRecord) error
	IsDuplicate func(error) bool
	// MapStoreError translates backend failures to the host taxonomy.
	MapStoreError func(error) error

	IssueAccessToken       func(string) (string, error)
	IssueRefreshToken      func(string) (string, error)
	IssueVerificationToken func(string) (string, error)

	// EnqueueVerificationMail hands the mail to the background
	// dispatcher and reports whether it was accepted. Delivery outcome
	// never reaches this flow.
	EnqueueVerificationMail func(ctx context.Context, email, token string) bool

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, userID string, err error, metadata func() map[string]string)

	Metrics RegisterMetrics
	Events  RegisterEvents
	Errors  RegisterErrors
}

// RunRegister executes the registration flow: unique insert, token
// issuance, and fire-and-forget verification mail.
func RunRegister(ctx context.Context, req RegisterRequest, deps RegisterDeps) (*RegisterResult, error) {
	normalizeRegisterDeps(&deps)

	if deps.NewUserID == nil || deps.HashPassword == nil || deps.CreateUser == nil ||
		deps.IssueAccessToken == nil || deps.IssueRefreshToken == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if req.Email == "" {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Register, false, "", deps.Errors.EmailRequired, nil)
		return nil, deps.Errors.EmailRequired
	}
	if !req.Social && len(req.Password) < deps.MinPasswordLength {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Register, false, "", deps.Errors.WeakPassword, func() map[string]string {
			return map[string]string{
				"email":  req.Email,
				"reason": "password_policy",
			}
		})
		return nil, deps.Errors.WeakPassword
	}

	// Social accounts may carry no local password at all. When one is
	// supplied anyway it is hashed so password login also works.
	var hash string
	if req.Password != "" {
		var err error
		hash, err = deps.HashPassword(req.Password)
		if err != nil {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Register, false, "", err, func() map[string]string {
				return map[string]string{
					"email":  req.Email,
					"reason": "hashing",
				}
			})
			return nil, deps.Errors.Hashing
		}
	}

	user := &UserRecord{
		ID:           deps.NewUserID(),
		Email:        req.Email,
		PasswordHash: hash,
		Picture:      req.Picture,
		CreatedAt:    deps.Now().Unix(),
	}

	if err := deps.CreateUser(ctx, user); err != nil {
		if deps.IsDuplicate(err) {
			deps.MetricInc(deps.Metrics.Duplicate)
			deps.EmitAudit(ctx, deps.Events.Register, false, "", deps.Errors.DuplicateUser, func() map[string]string {
				return map[string]string{
					"email":  req.Email,
					"reason": "duplicate_email",
				}
			})
			return nil, deps.Errors.DuplicateUser
		}
		mapped := deps.MapStoreError(err)
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Register, false, "", mapped, func() map[string]string {
			return map[string]string{"email": req.Email}
		})
		return nil, mapped
	}

	access, err := deps.IssueAccessToken(user.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Register, false, user.ID, err, nil)
		return nil, err
	}
	refresh, err := deps.IssueRefreshToken(user.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Register, false, user.ID, err, nil)
		return nil, err
	}

	// Verification mail is fire-and-forget: the response never waits on
	// delivery, and a full buffer only shows up in metrics and audit.
	if deps.IssueVerificationToken != nil && deps.EnqueueVerificationMail != nil {
		if verifyToken, vErr := deps.IssueVerificationToken(user.ID); vErr == nil {
			if deps.EnqueueVerificationMail(ctx, user.Email, verifyToken) {
				deps.MetricInc(deps.Metrics.MailEnqueued)
			} else {
				deps.MetricInc(deps.Metrics.MailDropped)
				deps.EmitAudit(ctx, deps.Events.VerificationMail, false, user.ID, nil, func() map[string]string {
					return map[string]string{"reason": "queue_full"}
				})
			}
		} else {
			deps.MetricInc(deps.Metrics.MailDropped)
			deps.EmitAudit(ctx, deps.Events.VerificationMail, false, user.ID, vErr, nil)
		}
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Register, true, user.ID, nil, func() map[string]string {
		return map[string]string{"email": user.Email}
	})

	result := &RegisterResult{
		User:         *user,
		AccessToken:  access,
		RefreshToken: refresh,
	}
	result.User.PasswordHash = ""

	return result, nil
}

func normalizeRegisterDeps(deps *RegisterDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
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
	if deps.IsDuplicate == nil {
		deps.IsDuplicate = func(error) bool { return false }
	}
	if deps.MapStoreError == nil {
		deps.MapStoreError = func(err error) error { return err }
	}
}
