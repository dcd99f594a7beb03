// Package workflow drives a matching session over the roster.
//
// A Manager owns one session: it holds the state-directory lock, loads the
// roster into a matching.Engine, and rebuilds the engine's holder table from
// artifacts assigned in earlier sessions. Token files are classified and
// assigned one artifact at a time; every Change the engine reports is
// persisted to the queue store after the engine call returns, so no I/O
// happens under the engine lock.
//
// Review operations (confirm, skip, mark as error, edit, retry) act on the
// same engine and store. Close saves the roster atomically, flushes the audit
// trail and releases the lock; it runs on cancellation too.
package workflow
