// Package config provides server configuration for TokStore.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (adapter selection, backend and hasher settings)
//   - sanitize.go: Log sanitization (hide sensitive values)
//   - convert.go: Mapping onto storage, hasher and logger configuration
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
