package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports a lookup that matched no user record.
	ErrNotFound = errors.New("store: user not found")
	// ErrDuplicateEmail reports an insert for an email that already has a
	// record.
	ErrDuplicateEmail = errors.New("store: email already registered")
	// ErrResetNotFound reports a reset consume that matched nothing. Wrong
	// hash, expired deadline, and already-spent token are deliberately
	// indistinguishable.
	ErrResetNotFound = errors.New("store: reset token not found or expired")
	// ErrUnavailable wraps backend failures (connection refused, script
	// errors) that are not domain outcomes.
	ErrUnavailable = errors.New("store: backend unavailable")
)

// UserRecord is the persisted shape of a user. PasswordHash is empty for
// social-only accounts. ResetTokenHash and ResetExpiresAt are either both
// set or both zero.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Verified     bool
	Picture      string

	ResetTokenHash string
	ResetExpiresAt int64

	CreatedAt int64
}

// Store is the credential persistence contract consumed by the engine.
// Implementations must honor the atomicity contract in the package doc.
type Store interface {
	// Create inserts rec, failing with ErrDuplicateEmail when the email
	// already has a record. The duplicate check and insert are atomic.
	Create(ctx context.Context, rec *UserRecord) error

	// GetByEmail loads the record for an email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)

	// GetByID loads the record for a user id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// SetResetToken stores the reset token hash and its expiry deadline on
	// the user, replacing any outstanding reset. ErrNotFound when the user
	// does not exist.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt int64) error

	// ConsumeResetToken atomically finds the user whose unexpired reset
	// token matches tokenHash, replaces the password hash with
	// newPasswordHash, and clears both reset fields. Returns the user id,
	// or ErrResetNotFound on any miss.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (string, error)

	// MarkVerified sets the verified flag. Reports whether the user was
	// already verified; re-verifying is not an error. ErrNotFound when the
	// user does not exist.
	MarkVerified(ctx context.Context, id string) (already bool, err error)
}
