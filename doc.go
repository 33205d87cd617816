// Package authkit provides the authentication core for web applications:
// registration, login with social-provider bypass, email verification,
// and single-use password resets, issued over purpose-tagged JWTs.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (RegisterResult, MetricsSnapshot, AuditEvent, etc.).
// Flow orchestration and audit dispatch live under internal/ and are never
// exported; persistence, hashing, tokens, and mail transports live in the
// store, password, token, and notify sub-packages.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store internals, or hash encodings in its
//     public API.
//   - Return stored password hashes to callers under any circumstance.
//   - Perform I/O outside of Engine methods (construction via Builder
//     only starts the background dispatchers).
//
// # Performance contract
//
// ValidateAccess is the hot path. It completes without store round-trips;
// only registration, login, verification, and reset operations touch the
// backend, one atomic operation per call.
package authkit
