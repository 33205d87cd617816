// Command authkit-server runs the authentication HTTP API as a standalone
// process: Redis-backed store, SMTP mail delivery, Prometheus metrics, and
// graceful shutdown. All configuration comes from AUTHKIT_* environment
// variables or an optional config file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/zetsy/authkit"
	"github.com/zetsy/authkit/httpapi"
	promexport "github.com/zetsy/authkit/metrics/export/prometheus"
	"github.com/zetsy/authkit/notify"
	"github.com/zetsy/authkit/store"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml/json); env vars override it")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	engine, redisClient, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Error("init engine failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.Router(engine, logger)
	if cfg.MetricsEnabled {
		exporter := promexport.NewPrometheusExporter(engine)
		router.GET("/metrics", gin.WrapH(exporter.Handler()))
	}

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("auth server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down auth server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	engine.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close failed", slog.String("error", err.Error()))
		}
	}
}

// buildEngine assembles the auth engine from process config. The returned
// redis client is non-nil only when a Redis store is in use; the caller
// owns closing both.
func buildEngine(cfg *serverConfig, logger *slog.Logger) (*authkit.Engine, redis.UniversalClient, error) {
	auth := authkit.DefaultConfig()
	auth.Token.AccessKey = []byte(cfg.AccessKey)
	auth.Token.RefreshKey = []byte(cfg.RefreshKey)
	if cfg.VerificationKey != "" {
		auth.Token.VerificationKey = []byte(cfg.VerificationKey)
	}
	auth.Token.Issuer = cfg.TokenIssuer
	auth.Token.AccessTTL = cfg.AccessTTL
	auth.Token.RefreshTTL = cfg.RefreshTTL
	auth.Token.VerificationTTL = cfg.VerificationTTL
	auth.PasswordReset.ResetTTL = cfg.ResetTTL
	auth.Registration.MinPasswordLength = cfg.MinPasswordLength
	auth.Store.KeyPrefix = cfg.KeyPrefix
	auth.Audit.Enabled = cfg.AuditEnabled
	auth.Metrics.Enabled = cfg.MetricsEnabled
	auth.Metrics.EnableLatencyHistograms = cfg.LatencyHistograms

	builder := authkit.New().WithConfig(auth)

	var redisClient redis.UniversalClient
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		builder.WithRedis(redisClient)
		logger.Info("using redis store", slog.String("addr", cfg.RedisAddr))
	} else {
		builder.WithStore(store.NewMemory())
		logger.Warn("no redis address configured, falling back to in-memory store")
	}

	if cfg.SMTPHost != "" {
		smtp, err := notify.NewSMTP(notify.SMTPConfig{
			Host:          cfg.SMTPHost,
			Port:          cfg.SMTPPort,
			Username:      cfg.SMTPUser,
			Password:      cfg.SMTPPass,
			From:          cfg.SMTPFrom,
			APIBaseURL:    cfg.APIBaseURL,
			ClientBaseURL: cfg.ClientBaseURL,
			SubjectPrefix: cfg.SubjectPrefix,
		})
		if err != nil {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			return nil, nil, err
		}
		builder.WithNotifier(smtp)
		logger.Info("using smtp notifier", slog.String("host", cfg.SMTPHost))
	} else {
		builder.WithNotifier(&logNotifier{logger: logger})
		logger.Warn("smtp not configured, mail links are logged instead of sent")
	}

	if cfg.AuditEnabled {
		builder.WithAuditSink(authkit.NewJSONWriterSink(os.Stdout))
	}

	engine, err := builder.Build()
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, nil, err
	}
	return engine, redisClient, nil
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// logNotifier stands in for SMTP during local development. Tokens land in
// the process log, which is enough to click through the flows by hand.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) SendVerificationLink(_ context.Context, email, token string) error {
	n.logger.Info("verification link",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}

func (n *logNotifier) SendResetLink(_ context.Context, email, token string) error {
	n.logger.Info("password reset link",
		slog.String("email", email),
		slog.String("token", token),
	)
	return nil
}
