package logger

import (
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted. Token keys and request
// IDs are identifiers, not secrets, and stay visible.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"salt",
	"derived",
	"credential",
	"authorization",
	"encryption",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks non-empty values whose key names suggest secret
// material, descending into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	if !IsSensitiveKey(a.Key) {
		return a
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() == "" {
			return a
		}
	case slog.KindAny:
		if a.Value.Any() == nil {
			return a
		}
	default:
		return a
	}
	return slog.String(a.Key, redactedValue)
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// Redact returns the placeholder for any non-empty value.
// Use this for values logged under a non-sensitive key.
func Redact(value string) string {
	if value == "" {
		return ""
	}
	return redactedValue
}
