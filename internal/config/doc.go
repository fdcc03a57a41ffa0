// Package config loads and validates the toolkit configuration: named
// storage roots with per-platform paths, the path-cache database
// location, the template definitions file, and logging options.
//
// Configuration lives in a TOML file resolved from --config, then
// ~/.config/slate/config.toml, then ./slate.toml. Loading always starts
// from Default() so a partial file only overrides what it names.
package config
