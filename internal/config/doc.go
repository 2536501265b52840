// Package config loads, normalizes, and validates Reverie configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REVERIE_API_TOKEN. The Config type centralizes every knob the CLI needs so
// the data directory, durable store backend, and compile backend are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
