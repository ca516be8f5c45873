// Package config holds the sharedstore-cli defaults file, ~/.sharedstore/cli.yaml.
// Flags and environment variables override what it sets.
package config
