package authkit

import (
	"bytes"
	"errors"
	"time"
)

// Config carries every tunable of the engine. Zero values are filled in
// from [DefaultConfig] by the builder; [Config.Validate] runs once during
// [Builder.Build] and the config is treated as immutable afterwards.
type Config struct {
	Token         TokenConfig
	Password      PasswordConfig
	Registration  RegistrationConfig
	PasswordReset PasswordResetConfig
	Mail          MailConfig
	Store         StoreConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

// TokenConfig controls token issuance. Access and refresh tokens must be
// signed with different keys so one can never stand in for the other.
type TokenConfig struct {
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration

	AccessKey  []byte
	RefreshKey []byte
	// VerificationKey defaults to AccessKey when empty.
	VerificationKey []byte

	// Issuer, when set, is stamped into the iss claim and checked on
	// verification.
	Issuer string
	Leeway time.Duration
}

// PasswordConfig holds the argon2id cost parameters. Memory is in KiB.
type PasswordConfig struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
}

// RegistrationConfig controls account creation.
type RegistrationConfig struct {
	// MinPasswordLength applies to non-social registrations and to new
	// passwords set through reset.
	MinPasswordLength int
}

// PasswordResetConfig controls the forgot-password challenge.
type PasswordResetConfig struct {
	// ResetTTL bounds how long a mailed reset token stays valid.
	ResetTTL time.Duration
}

// MailConfig controls the background mail dispatcher.
type MailConfig struct {
	BufferSize int
	// DropIfFull makes Enqueue non-blocking; a full buffer drops the job
	// and bumps [MetricMailDropped].
	DropIfFull  bool
	SendTimeout time.Duration
}

// StoreConfig controls key construction for Redis-backed stores.
type StoreConfig struct {
	KeyPrefix string
}

// AuditConfig controls the audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
}

// MetricsConfig controls metric collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the stock configuration. Token keys are not
// defaulted; callers must supply them.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:       24 * time.Hour,
			RefreshTTL:      7 * 24 * time.Hour,
			VerificationTTL: 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			MaxPasswordBytes: 1024,
		},
		Registration: RegistrationConfig{
			MinPasswordLength: 8,
		},
		PasswordReset: PasswordResetConfig{
			ResetTTL: time.Hour,
		},
		Mail: MailConfig{
			BufferSize:  256,
			DropIfFull:  true,
			SendTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			KeyPrefix: "ak",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.VerificationTTL <= 0 {
		return errors.New("Token VerificationTTL must be > 0")
	}
	if len(c.Token.AccessKey) == 0 {
		return errors.New("Token AccessKey is required")
	}
	if len(c.Token.RefreshKey) == 0 {
		return errors.New("Token RefreshKey is required")
	}
	if bytes.Equal(c.Token.AccessKey, c.Token.RefreshKey) {
		return errors.New("Token AccessKey and RefreshKey must differ")
	}
	if c.Token.Leeway < 0 {
		return errors.New("Token Leeway must be >= 0")
	}

	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KiB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	if c.Registration.MinPasswordLength < 1 {
		return errors.New("Registration MinPasswordLength must be >= 1")
	}

	if c.PasswordReset.ResetTTL <= 0 {
		return errors.New("PasswordReset ResetTTL must be > 0")
	}

	if c.Mail.BufferSize <= 0 {
		return errors.New("Mail BufferSize must be > 0")
	}
	if c.Mail.SendTimeout <= 0 {
		return errors.New("Mail SendTimeout must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}

	if c.Store.KeyPrefix == "" {
		return errors.New("Store KeyPrefix must not be empty")
	}

	return nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
