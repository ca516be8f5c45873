package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked, for
// logging.
func Sanitize(cfg *HostConfig) *HostConfig {
	sanitized := *cfg
	sanitized.Host.AllowedOrigins = append([]string(nil), cfg.Host.AllowedOrigins...)

	if sanitized.Security.EncryptionKey != "" {
		sanitized.Security.EncryptionKey = maskSecret(sanitized.Security.EncryptionKey)
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
