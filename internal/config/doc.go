// Package config loads and validates pixhunt's TOML configuration.
//
// The configuration file is optional: every value has a default, and
// command-line flags override whatever the file provides. Load resolves
// the file location (explicit flag, then ~/.config/pixhunt/config.toml,
// then ./pixhunt.toml), parses it, and validates the result.
package config
