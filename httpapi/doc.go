// Package httpapi exposes the authentication engine over a gin router.
//
// [Router] builds a ready-to-mount *gin.Engine with the /auth route group:
// register, login, forgot-password, reset-password, and verify-email.
// Engine sentinels map deterministically to HTTP statuses; backend detail
// is logged with slog and never leaks into response bodies.
//
// # What this package must NOT do
//
//   - Implement authentication logic (all decisions live in the engine).
//   - Return stored credential material or internal error strings.
package httpapi
