// Package middleware exposes an HTTP adapter that protects routes with
// authkit access tokens.
//
// [Guard] reads the Authorization header, calls Engine.ValidateAccess, and
// injects the validated result into the request context, where handlers
// retrieve it with [AuthResultFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; the decision is delegated to
// Engine.ValidateAccess.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the store (validation is stateless).
//   - Make authorization decisions beyond pass/reject.
package middleware
