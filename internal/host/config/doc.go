// Package config defines the sharedstore-host configuration.
//
//   - spec.go: HostConfig struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking of secrets for logging
//
// Configuration is loaded via internal/infra/confloader from a YAML file and
// SHAREDSTORE_ environment variables.
package config
