// Package roster loads the reference records an artifact can be matched to.
//
// A roster is a CSV file with a header row. Every column is kept verbatim so
// the file round-trips; one numeric column (the claim column) records the score
// of the artifact currently assigned to each record. The claim column is added
// with zeros when the source does not have it.
//
// Label templates turn a record into a human-readable identifier. They are
// compiled once against the roster header so that unknown columns and
// malformed braces are reported at startup instead of at assignment time.
package roster
