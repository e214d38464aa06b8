// Package emitter provides types.NotificationEmitter implementations.
//
// The engine treats notification delivery as best-effort: emitters run on the
// engine's dispatch goroutine after the originating slot's critical section
// has been released, and their errors are logged rather than surfaced to the
// registering user.
//
// Implementations:
//   - Nop: discards events (default)
//   - NATS: publishes events as JSON messages on a NATS subject hierarchy,
//     letting downstream notification services fan out to users
package emitter
