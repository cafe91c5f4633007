// Package config loads, normalizes, and validates brickmatch configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AMAZON_API_KEY. The Config type centralizes every knob the CLI needs, from
// match thresholds to run pacing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
