// Package preflight checks that the paths and roster a session depends on
// are usable before any work starts.
//
// The CLI "config validate" command runs RunAll and prints every result;
// a failed check makes the command exit non-zero.
package preflight
