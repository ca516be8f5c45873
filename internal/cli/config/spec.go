package config

import (
	"time"

	"github.com/yndnr/sharedstore-go/internal/cli/connection"
	"github.com/yndnr/sharedstore-go/internal/client"
)

// CLIConfig is the configuration for sharedstore-cli.
type CLIConfig struct {
	HostURL      string        `yaml:"host_url" json:"host_url"`
	Origin       string        `yaml:"origin" json:"origin"`
	TargetOrigin string        `yaml:"target_origin,omitempty" json:"target_origin,omitempty"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	Output       string        `yaml:"output" json:"output"` // table, json, yaml
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		HostURL: "http://127.0.0.1:5090",
		Origin:  connection.DefaultOrigin,
		Timeout: client.DefaultTimeout,
		Output:  "table",
	}
}
