package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// serverConfig is the process-level configuration. Every field maps to a
// viper key; environment variables use the AUTHKIT_ prefix with dots
// replaced by underscores (e.g. AUTHKIT_REDIS_ADDR).
type serverConfig struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	AccessKey       string
	RefreshKey      string
	VerificationKey string
	TokenIssuer     string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration

	MinPasswordLength int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string

	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	APIBaseURL    string
	ClientBaseURL string
	SubjectPrefix string

	AuditEnabled      bool
	MetricsEnabled    bool
	LatencyHistograms bool
}

func loadConfig(path string) (*serverConfig, error) {
	v := viper.New()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("token_issuer", "authkit")
	v.SetDefault("access_ttl", "24h")
	v.SetDefault("refresh_ttl", "168h")
	v.SetDefault("verification_ttl", "24h")
	v.SetDefault("reset_ttl", "1h")
	v.SetDefault("min_password_length", 8)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("key_prefix", "ak")

	v.SetDefault("smtp_port", 587)
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("client_base_url", "http://localhost:3000")

	v.SetDefault("audit_enabled", false)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("latency_histograms", false)

	v.SetEnvPrefix("AUTHKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &serverConfig{
		HTTPAddr:  v.GetString("http_addr"),
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),

		AccessKey:       v.GetString("access_key"),
		RefreshKey:      v.GetString("refresh_key"),
		VerificationKey: v.GetString("verification_key"),
		TokenIssuer:     v.GetString("token_issuer"),
		AccessTTL:       v.GetDuration("access_ttl"),
		RefreshTTL:      v.GetDuration("refresh_ttl"),
		VerificationTTL: v.GetDuration("verification_ttl"),
		ResetTTL:        v.GetDuration("reset_ttl"),

		MinPasswordLength: v.GetInt("min_password_length"),

		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		KeyPrefix:     v.GetString("key_prefix"),

		SMTPHost:      v.GetString("smtp_host"),
		SMTPPort:      v.GetInt("smtp_port"),
		SMTPUser:      v.GetString("smtp_user"),
		SMTPPass:      v.GetString("smtp_pass"),
		SMTPFrom:      v.GetString("smtp_from"),
		APIBaseURL:    v.GetString("api_base_url"),
		ClientBaseURL: v.GetString("client_base_url"),
		SubjectPrefix: v.GetString("subject_prefix"),

		AuditEnabled:      v.GetBool("audit_enabled"),
		MetricsEnabled:    v.GetBool("metrics_enabled"),
		LatencyHistograms: v.GetBool("latency_histograms"),
	}

	if cfg.AccessKey == "" || cfg.RefreshKey == "" {
		return nil, errors.New("AUTHKIT_ACCESS_KEY and AUTHKIT_REFRESH_KEY are required")
	}
	if cfg.AccessKey == cfg.RefreshKey {
		return nil, errors.New("AUTHKIT_ACCESS_KEY and AUTHKIT_REFRESH_KEY must differ")
	}

	return cfg, nil
}
