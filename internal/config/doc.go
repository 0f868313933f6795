// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.rxtodo/rxtodo.toml or OS-specific config directory)
// 3. Project config file (rxtodo.toml or .rxtodo.toml in the project root)
// 4. Environment variables (RXTODO_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.rxtodo/rxtodo.toml (preferred)
// - Windows: %APPDATA%\rxtodo\rxtodo.toml
// - macOS: ~/Library/Application Support/rxtodo/rxtodo.toml
// - Linux/BSD: $XDG_CONFIG_HOME/rxtodo/rxtodo.toml or ~/.config/rxtodo/rxtodo.toml
//
// Project-level config locations (overrides user config):
// - ./rxtodo.toml (preferred)
// - ./.rxtodo.toml
package config
