// Package queue persists artifacts and the review queue in SQLite.
//
// Each artifact row carries its tokens, classified fields, the current match
// state (record index, score, label, reason) and, while escalated, a position
// in the review queue. Producers append to the back of the queue and
// reviewers take from the front; Skip moves an artifact to the back again.
//
// The events table holds the per-artifact trail flushed from audit.Log at the
// end of a session.
//
// The database is working state for one roster rather than a long-term
// archive. Schema changes bump the version in schema.go; users clear the
// database to adopt the new schema.
package queue
