//go:build integration
// +build integration

package test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/zetsy/authkit"
	"github.com/zetsy/authkit/notify"
)

func integrationConfig() authkit.Config {
	cfg := authkit.DefaultConfig()
	cfg.Token.AccessKey = []byte("itest-access-key-0123456789abcde")
	cfg.Token.RefreshKey = []byte("itest-refresh-key-0123456789abcd")
	// Cheap argon2 so the suite stays fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

// newIntegrationEngine builds a Redis-backed engine against miniredis,
// with a recording notifier for token capture.
func newIntegrationEngine(t *testing.T) (*authkit.Engine, *notify.Recorder, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	recorder := notify.NewRecorder()
	engine, err := authkit.New().
		WithConfig(integrationConfig()).
		WithRedis(rdb).
		WithNotifier(recorder).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, recorder, mr
}

// waitForDelivery polls the recorder until a mail of the given kind for
// email shows up or the deadline passes. Verification mail is delivered by
// a background goroutine, so tests cannot read it synchronously.
func waitForDelivery(t *testing.T, rec *notify.Recorder, kind notify.Kind, email string) notify.Delivery {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, d := range rec.Deliveries() {
			if d.Kind == kind && d.Email == email {
				return d
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %v delivery for %s", kind, email)
	return notify.Delivery{}
}

func register(t *testing.T, engine *authkit.Engine, email, password string) *authkit.RegisterResult {
	t.Helper()

	res, err := engine.Register(context.Background(), authkit.RegisterRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return res
}
