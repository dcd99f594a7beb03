// Package matching assigns classified artifacts to roster records.
//
// Scoring blends an ordered per-slot similarity with an unordered token-set
// similarity. A record that already holds a claim cannot be taken by a weaker
// score, and a stronger score evicts the current holder, which is re-matched
// from an iterative worklist. All roster reads and writes for one top-level
// call happen under a single lock acquisition; the engine returns the
// resulting Changes so callers can persist them after the lock is released.
package matching
