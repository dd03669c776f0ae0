// Package adapter opens the configured token backend.
package adapter

import (
	"fmt"
	"log/slog"

	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/storage/cache"
	"github.com/yndnr/tokstore/internal/storage/file"
	"github.com/yndnr/tokstore/internal/storage/memory"
)

// Open resolves the configured adapter and constructs its backend.
//
// For AdapterNone the returned backend is nil: no backend is configured and
// the token store runs in its degraded mode.
func Open(cfg storage.Config, logger *slog.Logger) (storage.Adapter, storage.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a, err := storage.ResolveAdapter(cfg.Adapter, cfg.DirectoryManagesSessions)
	if err != nil {
		return "", nil, err
	}

	log := logger.With("adapter", string(a))

	switch a {
	case storage.AdapterMemory:
		return a, memory.New(cfg.Memory, memory.WithLogger(log)), nil

	case storage.AdapterFile:
		s, err := file.Open(cfg.File, file.WithLogger(log))
		if err != nil {
			return a, nil, err
		}
		return a, s, nil

	case storage.AdapterRedis:
		s, err := cache.Open(cfg.Redis, cache.WithLogger(log))
		if err != nil {
			return a, nil, err
		}
		return a, s, nil

	case storage.AdapterNone:
		log.Info("no session backend configured")
		return a, nil, nil
	}

	return "", nil, fmt.Errorf("unsupported session adapter %q", a)
}
