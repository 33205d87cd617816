package authkit

import (
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.AccessKey = []byte("test-access-key-0123456789abcdef")
	cfg.Token.RefreshKey = []byte("test-refresh-key-0123456789abcde")
	return cfg
}

func TestDefaultConfigNeedsKeys(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("DefaultConfig without keys must not validate")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with keys",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "shared signing key",
			mutate: func(c *Config) {
				c.Token.RefreshKey = append([]byte(nil), c.Token.AccessKey...)
			},
			wantValid: false,
		},
		{
			name: "missing access key",
			mutate: func(c *Config) {
				c.Token.AccessKey = nil
			},
			wantValid: false,
		},
		{
			name: "zero access ttl",
			mutate: func(c *Config) {
				c.Token.AccessTTL = 0
			},
			wantValid: false,
		},
		{
			name: "negative leeway",
			mutate: func(c *Config) {
				c.Token.Leeway = -time.Second
			},
			wantValid: false,
		},
		{
			name: "argon2 memory below floor",
			mutate: func(c *Config) {
				c.Password.Memory = 1024
			},
			wantValid: false,
		},
		{
			name: "salt too short",
			mutate: func(c *Config) {
				c.Password.SaltLength = 8
			},
			wantValid: false,
		},
		{
			name: "zero min password length",
			mutate: func(c *Config) {
				c.Registration.MinPasswordLength = 0
			},
			wantValid: false,
		},
		{
			name: "zero reset ttl",
			mutate: func(c *Config) {
				c.PasswordReset.ResetTTL = 0
			},
			wantValid: false,
		},
		{
			name: "zero mail buffer",
			mutate: func(c *Config) {
				c.Mail.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "empty store prefix",
			mutate: func(c *Config) {
				c.Store.KeyPrefix = ""
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
