// Package config loads pyward's TOML configuration.
//
// Load resolves the file (explicit path, then ~/.config/pyward/config.toml,
// then ./pyward.toml), decodes it over Default(), normalizes paths and
// enum-like fields, and validates the result. A missing file is not an
// error: the defaults are used.
package config
