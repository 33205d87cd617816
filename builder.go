package authkit

import (
	"errors"

	internalaudit "github.com/zetsy/authkit/internal/audit"
	"github.com/zetsy/authkit/notify"
	"github.com/zetsy/authkit/password"
	"github.com/zetsy/authkit/store"
	"github.com/zetsy/authkit/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Chain the With* options and finish with
// [Builder.Build]; a builder is single-use.
type Builder struct {
	config Config

	redis     redis.UniversalClient
	userStore store.Store
	notifier  notify.Notifier
	auditSink AuditSink

	built bool
}

// New starts a builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis backs the engine with a Redis-based [store.Store] built from
// client and the configured key prefix. Overridden by [Builder.WithStore].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore backs the engine with an explicit [store.Store]
// implementation, such as [store.NewMemory] in tests.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.userStore = s
	return b
}

// WithNotifier sets the mail transport. Without one, verification mails
// are dropped and password reset requests fail.
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink receives audit events when auditing is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validate latency histogram. Implies
// nothing unless metrics are enabled too.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the components, and starts the
// background dispatchers. The returned engine must be closed with
// [Engine.Close].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	cfg.Token.AccessKey = cloneBytes(cfg.Token.AccessKey)
	cfg.Token.RefreshKey = cloneBytes(cfg.Token.RefreshKey)
	cfg.Token.VerificationKey = cloneBytes(cfg.Token.VerificationKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	userStore := b.userStore
	if userStore == nil {
		if b.redis == nil {
			return nil, errors.New("store or redis client required")
		}
		userStore = store.NewRedis(b.redis, cfg.Store.KeyPrefix)
	}

	hasher, err := password.New(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}

	issuer, err := token.New(token.Config{
		AccessTTL:       cfg.Token.AccessTTL,
		RefreshTTL:      cfg.Token.RefreshTTL,
		VerificationTTL: cfg.Token.VerificationTTL,
		AccessKey:       cfg.Token.AccessKey,
		RefreshKey:      cfg.Token.RefreshKey,
		VerificationKey: cfg.Token.VerificationKey,
		Issuer:          cfg.Token.Issuer,
		Leeway:          cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		store:   userStore,
		hasher:  hasher,
		tokens:  issuer,
		metrics: NewMetrics(cfg.Metrics),
	}

	if b.notifier != nil {
		engine.mail = notify.NewDispatcher(notify.Config{
			BufferSize:  cfg.Mail.BufferSize,
			DropIfFull:  cfg.Mail.DropIfFull,
			SendTimeout: cfg.Mail.SendTimeout,
		}, b.notifier)
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
	}, b.auditSink)

	b.built = true

	return engine, nil
}
