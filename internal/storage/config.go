// Package storage defines the backend contract for TokStore.
package storage

import "time"

// Config selects and configures a backend.
type Config struct {
	// Adapter is the configured variant name; empty means "use defaults".
	Adapter string

	// DirectoryManagesSessions reports that the user directory already
	// provides session semantics. Only consulted when Adapter is empty.
	DirectoryManagesSessions bool

	Memory MemoryConfig
	File   FileConfig
	Redis  RedisConfig
}

// MemoryConfig configures the in-process backend.
type MemoryConfig struct {
	// ShardCount is the number of map shards (power of 2).
	// Default: 16
	ShardCount int
}

// FileConfig configures the on-disk Badger backend.
type FileConfig struct {
	// Dir is the database directory.
	Dir string

	// SyncWrites enables fsync after each write.
	// Default: true
	SyncWrites bool

	// GCInterval is the interval between value log GC runs.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the value log discard ratio (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// EncryptionKey, when set, encrypts values at rest. Hex or raw 32 bytes.
	EncryptionKey string
}

// RedisConfig configures the networked cache backend.
type RedisConfig struct {
	// Addrs lists server addresses. One address selects a single node,
	// several select cluster mode, MasterName selects sentinel mode.
	Addrs []string

	Username   string
	Password   string
	DB         int
	MasterName string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// Default values.
const (
	DefaultFileDir        = "/var/lib/tokstore/tokens"
	DefaultGCInterval     = 10 * time.Minute
	DefaultGCThreshold    = 0.5
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultDialTimeout    = 5 * time.Second
	DefaultRedisIOTimeout = 3 * time.Second
)

// DefaultConfig returns the default backend configuration.
func DefaultConfig() Config {
	return Config{
		Memory: MemoryConfig{
			ShardCount: 16,
		},
		File: FileConfig{
			Dir:         DefaultFileDir,
			SyncWrites:  true,
			GCInterval:  DefaultGCInterval,
			GCThreshold: DefaultGCThreshold,
		},
		Redis: RedisConfig{
			Addrs:        []string{DefaultRedisAddr},
			DialTimeout:  DefaultDialTimeout,
			ReadTimeout:  DefaultRedisIOTimeout,
			WriteTimeout: DefaultRedisIOTimeout,
		},
	}
}
