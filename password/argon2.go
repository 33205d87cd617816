package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// DefaultMaxPasswordBytes caps plaintext length when Config.MaxPasswordBytes
// is zero. Argon2 cost scales with input size, so unbounded input is a
// resource exhaustion vector.
const DefaultMaxPasswordBytes = 1024

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// ErrMalformedHash reports a stored hash that is not a decodable PHC string.
// All decode failures from Verify and NeedsRehash wrap this sentinel.
var ErrMalformedHash = errors.New("password: malformed hash encoding")

// Config holds the Argon2id cost parameters. Values are fixed at
// construction and never influenced by user input.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MaxPasswordBytes rejects plaintext longer than this before hashing.
	// Zero selects DefaultMaxPasswordBytes.
	MaxPasswordBytes int
}

// Hasher produces and verifies PHC-encoded Argon2id hashes. A Hasher is
// immutable after construction and safe for concurrent use.
type Hasher struct {
	cfg Config
}

// New validates cfg and returns a ready Hasher.
func New(cfg Config) (*Hasher, error) {
	if cfg.Memory < minMemoryKB {
		return nil, errors.New("password: memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return nil, errors.New("password: time cost must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return nil, errors.New("password: parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("password: salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("password: key length must be >= 16")
	}
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}

	return &Hasher{cfg: cfg}, nil
}

// Hash derives a salted Argon2id hash of plaintext and returns it in PHC
// form. The salt is drawn from crypto/rand per call, so two hashes of the
// same plaintext never match.
func (h *Hasher) Hash(plaintext string) (string, error) {
	// Raw string bytes exactly as provided, no Unicode normalization.
	if plaintext == "" {
		return "", errors.New("password: empty plaintext")
	}
	if len(plaintext) > h.cfg.MaxPasswordBytes {
		return "", fmt.Errorf("password: plaintext exceeds %d bytes", h.cfg.MaxPasswordBytes)
	}

	salt := make([]byte, h.cfg.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: salt generation: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.cfg.Memory,
		h.cfg.Time,
		h.cfg.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash of plaintext under the parameters embedded in
// encoded and compares in constant time. A mismatch returns (false, nil);
// an undecodable encoded hash returns an error wrapping ErrMalformedHash.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	if len(plaintext) > h.cfg.MaxPasswordBytes {
		return false, fmt.Errorf("password: plaintext exceeds %d bytes", h.cfg.MaxPasswordBytes)
	}

	rec, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(plaintext), rec.salt, rec.time, rec.memory, rec.parallelism, rec.keyLength)

	return subtle.ConstantTimeCompare(computed, rec.key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with parameters weaker
// than the configured ones, so callers can upgrade the stored hash after the
// next successful verification.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	rec, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}

	switch {
	case h.cfg.Memory > rec.memory:
		return true, nil
	case h.cfg.Time > rec.time:
		return true, nil
	case h.cfg.Parallelism > rec.parallelism:
		return true, nil
	case h.cfg.KeyLength != rec.keyLength:
		return true, nil
	}

	return false, nil
}

type phcRecord struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
	keyLength   uint32
}

func decodePHC(encoded string) (*phcRecord, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: want 6 fields", ErrMalformedHash)
	}
	if parts[1] != algorithmID {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, fmt.Errorf("%w: missing version field", ErrMalformedHash)
	}
	v, err := strconv.Atoi(version)
	if err != nil || v != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version %q", ErrMalformedHash, version)
	}

	var rec phcRecord
	if err := parseCostParams(parts[3], &rec); err != nil {
		return nil, err
	}

	rec.salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(rec.salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: bad salt field", ErrMalformedHash)
	}

	rec.key, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(rec.key) == 0 {
		return nil, fmt.Errorf("%w: bad key field", ErrMalformedHash)
	}
	rec.keyLength = uint32(len(rec.key))

	return &rec, nil
}

func parseCostParams(field string, rec *phcRecord) error {
	var haveM, haveT, haveP bool

	for pair := range strings.SplitSeq(field, ",") {
		k, val, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("%w: bad parameter entry %q", ErrMalformedHash, pair)
		}

		switch k {
		case "m":
			v, err := strconv.ParseUint(val, 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return fmt.Errorf("%w: bad memory parameter", ErrMalformedHash)
			}
			rec.memory = uint32(v)
			haveM = true
		case "t":
			v, err := strconv.ParseUint(val, 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return fmt.Errorf("%w: bad time parameter", ErrMalformedHash)
			}
			rec.time = uint32(v)
			haveT = true
		case "p":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return fmt.Errorf("%w: bad parallelism parameter", ErrMalformedHash)
			}
			rec.parallelism = uint8(v)
			haveP = true
		default:
			return fmt.Errorf("%w: unknown parameter %q", ErrMalformedHash, k)
		}
	}

	if !haveM || !haveT || !haveP {
		return fmt.Errorf("%w: incomplete cost parameters", ErrMalformedHash)
	}

	return nil
}
