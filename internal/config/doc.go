// Package config loads gitly settings.
//
// Values are resolved from, in order of precedence:
//   - GITLY_* environment variables (dots in keys become underscores)
//   - the config file (~/.gitly/config.yaml or an explicit --config path)
//   - built-in defaults
package config
