// Package config loads, normalizes, and validates folio's TOML
// configuration.
//
// Load resolves the config file (flag path, ~/.config/folio/config.toml, or
// ./folio.toml), decodes it over Default values, expands every path field,
// and validates the result. The sandbox roots declared here are the security
// boundary for the whole engine: they are resolved once at load time and are
// immutable for the process lifetime.
package config
