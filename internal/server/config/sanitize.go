package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Redis.Addrs = append([]string(nil), cfg.Redis.Addrs...)

	if sanitized.Redis.Password != "" {
		sanitized.Redis.Password = maskSecret(sanitized.Redis.Password)
	}
	if sanitized.File.EncryptionKey != "" {
		sanitized.File.EncryptionKey = maskSecret(sanitized.File.EncryptionKey)
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
