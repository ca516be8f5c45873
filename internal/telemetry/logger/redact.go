package logger

import (
	"log/slog"
	"strings"
)

// Attribute names whose values are never logged.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"encryption_key",
	"credential",
	"bearer",
}

// Attribute names carrying stored documents. Their values are logged but
// truncated.
var payloadKeys = map[string]bool{
	"value":   true,
	"payload": true,
	"body":    true,
}

const (
	redactedValue = "***REDACTED***"

	// MaxPayloadLen is the longest payload value logged verbatim.
	MaxPayloadLen = 256
)

func redact(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if payloadKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, Truncate(s))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redact(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// Truncate shortens s to MaxPayloadLen bytes, marking the cut.
func Truncate(s string) string {
	if len(s) <= MaxPayloadLen {
		return s
	}
	return s[:MaxPayloadLen] + "...(truncated)"
}

// IsSensitiveKey reports whether an attribute name suggests a secret.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}
