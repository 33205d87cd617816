package authkit

import "errors"

var (
	// ErrDuplicateUser reports a registration for an email that already
	// has an account.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrUserNotFound reports an email or user id with no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials reports a failed password comparison,
	// including password login against a social-only account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOrExpiredToken reports a password reset token that
	// matched nothing. Wrong, expired, and already-spent tokens are
	// deliberately indistinguishable.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	// ErrTokenExpired reports a signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid reports a bad signature or a purpose mismatch.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenMalformed reports input that does not parse as a token.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrHashing reports a password hasher failure: RNG trouble on hash,
	// or an undecodable stored hash on verify.
	ErrHashing = errors.New("password hashing failure")
	// ErrStoreUnavailable wraps credential store backend failures.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrNotifierFailure reports a mail delivery failure on a flow that
	// surfaces it (forgot password).
	ErrNotifierFailure = errors.New("notifier delivery failure")

	// ErrEmailRequired reports a registration without an email address.
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordPolicy reports a password below the configured minimum
	// length.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrEngineNotReady reports an Engine used before Build wired it.
	ErrEngineNotReady = errors.New("engine not initialized")
)
