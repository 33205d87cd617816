// Package internal contains helper utilities that are intentionally private
// to authkit, including secure random generation for user ids and password
// reset secrets.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - flows — pure-function flow orchestrators for every Engine operation
//
// # What this package must NOT do
//
//   - Export types that appear in the public authkit API.
//   - Be imported by any package outside the authkit module.
package internal
