// Package config loads, normalizes, and validates gonetids configuration.
//
// Settings come from an optional TOML file layered over repository defaults;
// command-line flags are applied on top by the caller before Validate runs.
// The Config type covers the frame source, the analysis pool, the blacklist,
// logging and report output.
package config
