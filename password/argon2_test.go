package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if strings.Contains(hash, "P@ssw0rd-Ascii") {
		t.Fatal("hash must not contain the plaintext")
	}

	ok, err := hasher.Verify("P@ssw0rd-Ascii", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to succeed")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext must differ")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for _, bad := range []string{
		"",
		"not-a-phc-hash",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		_, err := hasher.Verify("password", bad)
		if !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("Verify(%q): want ErrMalformedHash, got %v", bad, err)
		}
	}
}

func TestVerifyWrongVersion(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	hash, err := hasher.Hash("version-test")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	wrongVersion := strings.Replace(hash, "$v=19$", "$v=18$", 1)
	if _, err := hasher.Verify("version-test", wrongVersion); !errors.Is(err, ErrMalformedHash) {
		t.Fatalf("want ErrMalformedHash for unsupported version, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	oldHasher, err := New(Config{
		Memory:      32768,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("New(old) error: %v", err)
	}

	hash, err := oldHasher.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	newHasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New(new) error: %v", err)
	}

	upgrade, err := newHasher.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected NeedsRehash=true for weaker stored parameters")
	}

	upgrade, err = oldHasher.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if upgrade {
		t.Fatal("expected NeedsRehash=false for matching parameters")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Hash(""); err == nil {
		t.Fatal("expected empty plaintext to be rejected")
	}
}

func TestMaxPasswordBytes(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPasswordBytes = 64
	hasher, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Hash(strings.Repeat("a", 65)); err == nil {
		t.Fatal("expected over-limit plaintext to be rejected by Hash")
	}

	exact := strings.Repeat("b", 64)
	hash, err := hasher.Hash(exact)
	if err != nil {
		t.Fatalf("expected exactly-max plaintext to be accepted: %v", err)
	}
	if ok, err := hasher.Verify(exact, hash); err != nil || !ok {
		t.Fatalf("Verify at max length: ok=%v err=%v", ok, err)
	}

	if _, err := hasher.Verify(strings.Repeat("c", 65), hash); err == nil {
		t.Fatal("expected over-limit plaintext to be rejected by Verify")
	}
}

func TestDefaultMaxPasswordBytes(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := hasher.Hash(strings.Repeat("d", DefaultMaxPasswordBytes+1)); err == nil {
		t.Fatalf("expected plaintext > %d bytes to be rejected", DefaultMaxPasswordBytes)
	}
	if _, err := hasher.Hash(strings.Repeat("e", DefaultMaxPasswordBytes)); err != nil {
		t.Fatalf("expected plaintext of exactly %d bytes to be accepted: %v", DefaultMaxPasswordBytes, err)
	}
}

func TestNewRejectsWeakConfig(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"low memory", func(c *Config) { c.Memory = 1024 }},
		{"zero time", func(c *Config) { c.Time = 0 }},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }},
		{"short salt", func(c *Config) { c.SaltLength = 8 }},
		{"short key", func(c *Config) { c.KeyLength = 8 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mut(&cfg)
			if _, err := New(cfg); err == nil {
				t.Fatal("expected config validation to fail")
			}
		})
	}
}
