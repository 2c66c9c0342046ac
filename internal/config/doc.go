// Package config manages application settings.
//
// Settings are persisted as JSON. Loading a missing file returns defaults,
// so first runs need no setup:
//
//	settings, err := config.Load("/path/to/config.json")
//
// Command-line flags are applied on top of loaded settings by the cmd
// packages.
package config
