// Package token issues and verifies the signed bearer tokens used by the
// authentication engine: access, refresh, and email-verification tokens.
//
// Tokens are HS256 JWTs carrying the subject user id, issue time, expiry,
// and a purpose claim ("prp"). Verification requires the expected purpose, so
// a verification token can never be replayed as an access token. Access and
// refresh tokens are signed with distinct keys, which lets an operator rotate
// one class without invalidating the other.
//
// There is no revocation list. A leaked token stays valid until its natural
// expiry; the TTLs in [Config] bound that exposure.
//
// # Architecture boundaries
//
// This package owns signing and validation only. Which purpose to issue for
// which flow, and how token errors map to the public error taxonomy, is the
// Engine's business. The opaque password-reset secret is not a token in this
// package's sense and is handled by the store.
package token
