// Command authkit-loadtest seeds a batch of accounts and hammers the two
// hot paths, login and access-token validation, reporting throughput and
// latency percentiles. Without -redis-addr (or REDIS_ADDR) it runs
// self-contained against miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/zetsy/authkit"
	"github.com/zetsy/authkit/notify"
)

type account struct {
	email       string
	password    string
	accessToken string
}

func main() {
	var (
		users       = flag.Int("users", 1000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (validate + login)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ak", "store key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authkit.DefaultConfig()
	cfg.Token.AccessKey = []byte("loadtest-access-key-0123456789ab")
	cfg.Token.RefreshKey = []byte("loadtest-refresh-key-0123456789a")
	// Cheap argon2: the load test measures store and token paths, not KDF cost.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Store.KeyPrefix = *prefix

	engine, err := authkit.New().
		WithConfig(cfg).
		WithRedis(client).
		WithNotifier(notify.NewRecorder()).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	accounts := make([]account, *users)
	fmt.Printf("seeding %d accounts...\n", *users)
	startSeed := time.Now()
	for i := 0; i < *users; i++ {
		a := account{
			email:    fmt.Sprintf("load-%d@example.com", i),
			password: fmt.Sprintf("load-password-%d-pad", i),
		}
		res, err := engine.Register(ctx, authkit.RegisterRequest{
			Email:    a.email,
			Password: a.password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed register failed: %v\n", err)
			os.Exit(1)
		}
		a.accessToken = res.AccessToken
		accounts[i] = a
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		a := &accounts[r.Intn(len(accounts))]
		_, err := engine.ValidateAccess(ctx, a.accessToken)
		return err
	})
	loginStats := runPhase(*ops, *concurrency, func(r *rand.Rand) error {
		a := &accounts[r.Intn(len(accounts))]
		_, err := engine.Login(ctx, authkit.LoginRequest{
			Email:    a.email,
			Password: a.password,
		})
		return err
	})

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("login", loginStats)
}

func runPhase(ops, concurrency int, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
