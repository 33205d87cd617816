// Package notify delivers account emails: verification links and password
// reset links.
//
// # Components
//
//   - [Notifier] — interface for delivery backends.
//   - [SMTP] — gomail-backed implementation with HTML bodies.
//   - [Dispatcher] — buffered async relay for fire-and-forget delivery,
//     with a drop counter and a drained Close.
//   - [Recorder] — in-memory Notifier for tests.
//
// Registration mail goes through the Dispatcher so the registering request
// never waits on SMTP; password reset mail is sent synchronously by the
// engine because its failure must reach the caller.
//
// # What this package must NOT do
//
//   - Decide which mails to send or when — that is the Engine's business.
//   - Import any other authkit package.
package notify
