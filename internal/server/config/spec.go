package config

import "time"

// ServerConfig is the root configuration for tokstore-server and
// tokstore-cli.
type ServerConfig struct {
	Session   SessionSection   `koanf:"session"`
	Directory DirectorySection `koanf:"directory"`
	Memory    MemorySection    `koanf:"memory"`
	File      FileSection      `koanf:"file"`
	Redis     RedisSection     `koanf:"redis"`
	Hasher    HasherSection    `koanf:"hasher"`
	Server    ServerSection    `koanf:"server"`
	Log       LogSection       `koanf:"log"`
	Metrics   MetricsSection   `koanf:"metrics"`
}

// SessionSection selects the token backend.
type SessionSection struct {
	// Adapter is one of memory, file, redis, none. Empty applies defaults.
	Adapter string `koanf:"adapter"`
}

// DirectorySection describes the user directory TokStore fronts.
type DirectorySection struct {
	// ManagesSessions reports that the directory keeps its own sessions.
	// With no adapter configured this selects none.
	ManagesSessions bool `koanf:"manages_sessions"`
}

// MemorySection configures the in-process backend.
type MemorySection struct {
	ShardCount int `koanf:"shard_count"`
}

// FileSection configures the on-disk backend.
type FileSection struct {
	Dir           string        `koanf:"dir"`
	SyncWrites    bool          `koanf:"sync_writes"`
	GCInterval    time.Duration `koanf:"gc_interval"`
	GCThreshold   float64       `koanf:"gc_threshold"`
	EncryptionKey string        `koanf:"encryption_key"`
}

// RedisSection configures the networked cache backend.
type RedisSection struct {
	Addrs        []string      `koanf:"addrs"`
	Username     string        `koanf:"username"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	MasterName   string        `koanf:"master_name"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	PoolSize     int           `koanf:"pool_size"`
}

// HasherSection configures secret hashing.
type HasherSection struct {
	Algorithm   string `koanf:"algorithm"`
	Iterations  int    `koanf:"iterations"`
	KeyLength   uint32 `koanf:"key_length"`
	SaltLength  uint32 `koanf:"salt_length"`
	MemoryKB    uint32 `koanf:"memory_kb"`
	Time        uint32 `koanf:"time"`
	Parallelism uint8  `koanf:"parallelism"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the Unix socket listener. An empty Socket
// disables it.
type LocalConfig struct {
	Socket string `koanf:"socket"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// ConfirmRateLimit is the sustained confirm rate per client IP
	// (requests per second). Zero disables limiting.
	ConfirmRateLimit float64 `koanf:"confirm_rate_limit"`
	ConfirmBurst     int     `koanf:"confirm_burst"`

	// TrustedProxies lists proxy addresses or CIDRs allowed to set the
	// client IP through X-Forwarded-For or X-Real-IP. Empty trusts nobody.
	TrustedProxies []string `koanf:"trusted_proxies"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the /metrics endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}
