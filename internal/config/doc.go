// Package config loads, normalizes, and validates Atelier configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// workspace core and CLI need: the data directory that holds the session
// database, image assets, and fallback cache, plus logging and persistence
// timing settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation
// errors.
package config
