package config

import (
	"time"

	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/pkg/secret"
)

// Default configuration values.
const (
	DefaultHTTPAddr         = "127.0.0.1:5080"
	DefaultConfirmRateLimit = 10
	DefaultConfirmBurst     = 20
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultShutdownTimeout  = 15 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	st := storage.DefaultConfig()
	h := secret.DefaultConfig()

	return &ServerConfig{
		Memory: MemorySection{
			ShardCount: st.Memory.ShardCount,
		},
		File: FileSection{
			Dir:         st.File.Dir,
			SyncWrites:  st.File.SyncWrites,
			GCInterval:  st.File.GCInterval,
			GCThreshold: st.File.GCThreshold,
		},
		Redis: RedisSection{
			Addrs:        st.Redis.Addrs,
			DialTimeout:  st.Redis.DialTimeout,
			ReadTimeout:  st.Redis.ReadTimeout,
			WriteTimeout: st.Redis.WriteTimeout,
		},
		Hasher: HasherSection{
			Algorithm:   h.Algorithm,
			Iterations:  h.Iterations,
			KeyLength:   h.KeyLength,
			SaltLength:  h.SaltLength,
			MemoryKB:    h.MemoryKB,
			Time:        h.Time,
			Parallelism: h.Parallelism,
		},
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:             DefaultHTTPAddr,
				ConfirmRateLimit: DefaultConfirmRateLimit,
				ConfirmBurst:     DefaultConfirmBurst,
				ReadTimeout:      DefaultReadTimeout,
				WriteTimeout:     DefaultWriteTimeout,
				ShutdownTimeout:  DefaultShutdownTimeout,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
	}
}
