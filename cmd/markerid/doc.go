// Command markerid matches OCR tokens from scanned grave-marker photos to the
// records of a roster CSV.
//
// The classify and normalize-date commands work without configuration. Every
// other command opens a session on the configured roster and state directory;
// only one session may run at a time.
package main
