// Package password implements one-way credential hashing with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification is constant-time over the derived key. A mismatch is reported
// as (false, nil); only a hash that cannot be decoded produces an error, so
// callers can distinguish "wrong password" from "corrupt stored credential".
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length, social-account exemptions) is enforced by the Engine, and storage
// belongs to the credential store.
//
// # What this package must NOT do
//
//   - Persist or retrieve credentials.
//   - Import any other authkit package.
//   - Log plaintext passwords or hash parameters.
package password
