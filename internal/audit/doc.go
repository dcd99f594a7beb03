// Package audit collects the per-artifact event trail.
//
// Operations receive a Sink and append short human-readable events to it. The
// in-memory Log buffers events until the session ends, when the workflow
// persists them to the artifact store and appends them to the global log file
// as "artifact<TAB>event" lines.
package audit
