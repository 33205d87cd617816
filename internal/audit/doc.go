// Package audit implements async event dispatching for authentication
// operations.
//
// # Components
//
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher] — buffered async relay; emits never block the flow that
//     produced them, overflow is counted and dropped.
//   - [Event] — structured record with timestamp, type, user, email, IP.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide
// which events to emit — that responsibility belongs to the Engine and flow
// functions.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import authkit or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
