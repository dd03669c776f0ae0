package config

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
	"github.com/yndnr/tokstore/pkg/crypto/adaptive"
)

// Verify validates the configuration. Backend sections are checked only
// for the adapter that will actually be opened.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return invalid("configuration is nil")
	}

	adapter, err := storage.ResolveAdapter(cfg.Session.Adapter, cfg.Directory.ManagesSessions)
	if err != nil {
		return domain.ErrInvalidConfig.WithDetails("session.adapter").WithCause(err)
	}

	switch adapter {
	case storage.AdapterMemory:
		if err := verifyMemory(&cfg.Memory); err != nil {
			return err
		}
	case storage.AdapterFile:
		if err := verifyFile(&cfg.File); err != nil {
			return err
		}
	case storage.AdapterRedis:
		if err := verifyRedis(&cfg.Redis); err != nil {
			return err
		}
	}

	if err := cfg.HasherConfig().Validate(); err != nil {
		return domain.ErrInvalidConfig.WithDetails("hasher").WithCause(err)
	}
	if err := verifyHTTP(&cfg.Server.HTTP); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf(format, args...))
}

func verifyMemory(cfg *MemorySection) error {
	n := cfg.ShardCount
	if n != 0 && (n < 0 || n&(n-1) != 0) {
		return invalid("memory.shard_count must be a power of 2, got %d", n)
	}
	return nil
}

func verifyFile(cfg *FileSection) error {
	if cfg.Dir == "" {
		return invalid("file.dir is required for the file adapter")
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		return invalid("file.gc_threshold must be in (0, 1), got %v", cfg.GCThreshold)
	}
	if cfg.GCInterval < 0 {
		return invalid("file.gc_interval must not be negative")
	}
	if cfg.EncryptionKey != "" {
		if _, err := adaptive.ParseKey(cfg.EncryptionKey); err != nil {
			return domain.ErrInvalidConfig.WithDetails("file.encryption_key").WithCause(err)
		}
	}
	return nil
}

func verifyRedis(cfg *RedisSection) error {
	if len(cfg.Addrs) == 0 {
		return invalid("redis.addrs is required for the redis adapter")
	}
	for _, addr := range cfg.Addrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return invalid("redis.addrs: %q is not host:port", addr)
		}
	}
	if cfg.DB < 0 {
		return invalid("redis.db must not be negative")
	}
	if cfg.DB != 0 && len(cfg.Addrs) > 1 && cfg.MasterName == "" {
		return invalid("redis.db is not supported in cluster mode")
	}
	if cfg.PoolSize < 0 {
		return invalid("redis.pool_size must not be negative")
	}
	return nil
}

func verifyHTTP(cfg *HTTPConfig) error {
	if cfg.Addr == "" {
		return invalid("server.http.addr is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return invalid("server.http.addr: %q is not host:port", cfg.Addr)
	}
	if cfg.ConfirmRateLimit < 0 {
		return invalid("server.http.confirm_rate_limit must not be negative")
	}
	if cfg.ConfirmRateLimit > 0 && cfg.ConfirmBurst < 1 {
		return invalid("server.http.confirm_burst must be at least 1 when rate limiting")
	}
	for _, p := range cfg.TrustedProxies {
		if !validProxyEntry(p) {
			return invalid("server.http.trusted_proxies: %q is not an IP or CIDR", p)
		}
	}
	return nil
}

func validProxyEntry(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return domain.ErrInvalidConfig.WithDetails("log.level").WithCause(err)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
		return nil
	default:
		return invalid("log.format must be json or text, got %q", cfg.Format)
	}
}
