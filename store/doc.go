// Package store persists user credential records.
//
// The [Store] interface is what the engine consumes. Two implementations
// ship with the module: [Redis], backed by go-redis with Lua scripts for the
// operations that must be atomic, and [Memory], a mutex-guarded map for
// tests and examples.
//
// # Atomicity contract
//
// Three operations are single atomic units regardless of backend:
//
//   - Create: unique-email check and insert together, so concurrent
//     registrations of one email produce exactly one record.
//   - ConsumeResetToken: match by token hash and unexpired deadline, swap
//     the password hash, and clear both reset fields in one step, so a
//     reset token is spent at most once.
//   - MarkVerified: read-check-set of the verified flag, which only ever
//     moves false to true.
//
// The reset token pair (hash and expiry deadline) is always written and
// cleared together. The store never sees the plaintext reset secret, only
// its SHA-256 hex digest.
package store
