package authkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalaudit "github.com/zetsy/authkit/internal/audit"
	"github.com/zetsy/authkit/internal/flows"
	"github.com/zetsy/authkit/notify"
	"github.com/zetsy/authkit/password"
	"github.com/zetsy/authkit/store"
	"github.com/zetsy/authkit/token"
)

// Audit event types emitted by the engine. Stable strings; sinks may
// filter on them.
const (
	auditEventRegister         = "register"
	auditEventLogin            = "login"
	auditEventVerifyEmail      = "email_verification"
	auditEventVerificationMail = "verification_mail"
	auditEventResetRequest     = "password_reset_request"
	auditEventResetConfirm     = "password_reset_confirm"
)

// Engine is the root façade. Build one through [New]; it owns the hasher,
// the token issuer, the background mail and audit dispatchers, and a
// [store.Store]. All methods are safe for concurrent use.
type Engine struct {
	config  Config
	store   store.Store
	hasher  *password.Hasher
	tokens  *token.Issuer
	mail    *notify.Dispatcher
	audit   *internalaudit.Dispatcher
	metrics *Metrics
}

// Close stops the background dispatchers. Queued mail and audit events
// are drained before it returns.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.mail != nil {
		e.mail.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports audit events lost to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MailDropped reports mail jobs lost to dispatcher backpressure.
func (e *Engine) MailDropped() uint64 {
	if e == nil || e.mail == nil {
		return 0
	}
	return e.mail.Dropped()
}

// MetricsSnapshot copies the engine's current metric values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// ValidateAccess verifies a bearer access token and returns its subject.
// Refresh and verification tokens are rejected here regardless of their
// own validity.
func (e *Engine) ValidateAccess(ctx context.Context, raw string) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	subject, err := e.tokens.Verify(raw, token.PurposeAccess)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}
	if err != nil {
		return nil, e.mapTokenError(err)
	}

	return &AuthResult{UserID: subject}, nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if email, ok := metadata["email"]; ok {
		event.Email = email
	}

	e.audit.Emit(event)
}

// mapStoreError folds backend failures into the public taxonomy. Callers
// handle the specific sentinels (not found, duplicate, spent reset) before
// reaching this. The cause is kept in the chain so audit events and server
// logs can name the actual backend failure.
func (e *Engine) mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (e *Engine) mapTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenInvalid
	}
}

func userFromFlowRecord(rec flows.UserRecord) User {
	return User{
		ID:        rec.ID,
		Email:     rec.Email,
		Verified:  rec.Verified,
		Picture:   rec.Picture,
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
	}
}

func flowRecordFromStore(rec *store.UserRecord) flows.UserRecord {
	return flows.UserRecord{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Verified:     rec.Verified,
		Picture:      rec.Picture,
		CreatedAt:    rec.CreatedAt,
	}
}
