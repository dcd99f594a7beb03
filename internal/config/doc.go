// Package config loads, normalizes, and validates markerid configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MARKERID_ROSTER_FILE. The Config type centralizes every knob the CLI needs
// and converts the matching and vocabulary sections into the types consumed
// by the engine and classifier.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
