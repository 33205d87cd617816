package token

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags a token with the single flow it is valid for.
type Purpose string

const (
	// PurposeAccess authorizes API calls.
	PurposeAccess Purpose = "access"
	// PurposeRefresh is exchanged for new access tokens.
	PurposeRefresh Purpose = "refresh"
	// PurposeVerifyEmail proves ownership of a registered email address.
	PurposeVerifyEmail Purpose = "verify_email"
)

// Verification failure classes. Verify returns errors wrapping exactly one
// of these sentinels.
var (
	// ErrExpired reports a structurally valid token past its expiry.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid reports a bad signature, a purpose mismatch, or claims
	// that fail validation for any reason other than expiry.
	ErrInvalid = errors.New("token: invalid")
	// ErrMalformed reports input that does not parse as a JWT at all.
	ErrMalformed = errors.New("token: malformed")
)

// Default TTLs applied when the corresponding Config field is zero.
const (
	DefaultAccessTTL       = 24 * time.Hour
	DefaultRefreshTTL      = 7 * 24 * time.Hour
	DefaultVerificationTTL = 24 * time.Hour
)

const maxLeeway = 2 * time.Minute

// Config holds the signing keys and lifetimes for all three token purposes.
// AccessKey and RefreshKey are required and must differ; VerificationKey
// falls back to AccessKey when empty.
type Config struct {
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration

	AccessKey       []byte
	RefreshKey      []byte
	VerificationKey []byte

	// Issuer, when set, is stamped into the iss claim and required on
	// verification.
	Issuer string
	// Leeway tolerates clock skew during expiry checks, capped at 2m.
	Leeway time.Duration
}

// Issuer signs and verifies purpose-tagged tokens. It is immutable after
// construction and safe for concurrent use.
type Issuer struct {
	cfg Config
}

// Claims is the JWT payload for all purposes: registered claims plus the
// purpose tag.
type Claims struct {
	Purpose Purpose `json:"prp"`
	jwt.RegisteredClaims
}

// New validates cfg, applies TTL defaults, and returns a ready Issuer.
func New(cfg Config) (*Issuer, error) {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.VerificationTTL == 0 {
		cfg.VerificationTTL = DefaultVerificationTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 || cfg.VerificationTTL < 0 {
		return nil, errors.New("token: negative TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > maxLeeway {
		return nil, errors.New("token: leeway must be within [0, 2m]")
	}
	if len(cfg.AccessKey) == 0 {
		return nil, errors.New("token: access key is required")
	}
	if len(cfg.RefreshKey) == 0 {
		return nil, errors.New("token: refresh key is required")
	}
	if bytes.Equal(cfg.AccessKey, cfg.RefreshKey) {
		return nil, errors.New("token: access and refresh keys must differ")
	}
	if len(cfg.VerificationKey) == 0 {
		cfg.VerificationKey = cfg.AccessKey
	}

	return &Issuer{cfg: cfg}, nil
}

// Issue signs a token for subject with the given purpose, using that
// purpose's key and TTL.
func (i *Issuer) Issue(subject string, purpose Purpose) (string, error) {
	if subject == "" {
		return "", errors.New("token: empty subject")
	}
	key, ttl, err := i.purposeParams(purpose)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    i.cfg.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Verify checks signature, expiry, and purpose, and returns the subject.
// Failures wrap ErrExpired, ErrInvalid, or ErrMalformed.
func (i *Issuer) Verify(raw string, purpose Purpose) (string, error) {
	key, _, err := i.purposeParams(purpose)
	if err != nil {
		return "", err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if i.cfg.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.cfg.Leeway))
	}
	if i.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.cfg.Issuer))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return "", classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("%w: unusable claims", ErrInvalid)
	}
	if claims.Purpose != purpose {
		return "", fmt.Errorf("%w: purpose %q where %q expected", ErrInvalid, claims.Purpose, purpose)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalid)
	}

	return claims.Subject, nil
}

// TTL reports the configured lifetime for a purpose. Unknown purposes
// report zero.
func (i *Issuer) TTL(purpose Purpose) time.Duration {
	_, ttl, err := i.purposeParams(purpose)
	if err != nil {
		return 0
	}
	return ttl
}

func (i *Issuer) purposeParams(purpose Purpose) ([]byte, time.Duration, error) {
	switch purpose {
	case PurposeAccess:
		return i.cfg.AccessKey, i.cfg.AccessTTL, nil
	case PurposeRefresh:
		return i.cfg.RefreshKey, i.cfg.RefreshTTL, nil
	case PurposeVerifyEmail:
		return i.cfg.VerificationKey, i.cfg.VerificationTTL, nil
	default:
		return nil, 0, fmt.Errorf("token: unknown purpose %q", purpose)
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}
