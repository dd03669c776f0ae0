package config

import (
	"io"

	"github.com/yndnr/tokstore/internal/infra/confloader"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
	"github.com/yndnr/tokstore/pkg/secret"
)

// Load reads configuration from path (optional), the TOKSTORE_ environment
// and overrides, on top of Default(). The result is not verified.
func Load(path string, overrides map[string]any) (*ServerConfig, error) {
	cfg := Default()
	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StorageConfig maps the backend sections onto storage.Config.
func (c *ServerConfig) StorageConfig() storage.Config {
	return storage.Config{
		Adapter:                  c.Session.Adapter,
		DirectoryManagesSessions: c.Directory.ManagesSessions,
		Memory: storage.MemoryConfig{
			ShardCount: c.Memory.ShardCount,
		},
		File: storage.FileConfig{
			Dir:           c.File.Dir,
			SyncWrites:    c.File.SyncWrites,
			GCInterval:    c.File.GCInterval,
			GCThreshold:   c.File.GCThreshold,
			EncryptionKey: c.File.EncryptionKey,
		},
		Redis: storage.RedisConfig{
			Addrs:        c.Redis.Addrs,
			Username:     c.Redis.Username,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			MasterName:   c.Redis.MasterName,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
			PoolSize:     c.Redis.PoolSize,
		},
	}
}

// HasherConfig maps the hasher section onto secret.Config.
func (c *ServerConfig) HasherConfig() secret.Config {
	return secret.Config{
		Algorithm:   c.Hasher.Algorithm,
		Iterations:  c.Hasher.Iterations,
		KeyLength:   c.Hasher.KeyLength,
		SaltLength:  c.Hasher.SaltLength,
		MemoryKB:    c.Hasher.MemoryKB,
		Time:        c.Hasher.Time,
		Parallelism: c.Hasher.Parallelism,
	}
}

// LoggerConfig maps the log section onto logger.Config writing to out.
func (c *ServerConfig) LoggerConfig(out io.Writer) logger.Config {
	return logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: out,
	}
}
