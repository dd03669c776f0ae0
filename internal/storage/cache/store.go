package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/storage"
)

// ErrUnavailable wraps connectivity failures reported by Ping.
var ErrUnavailable = errors.New("redis unavailable")

// Store implements storage.Backend on a Redis client.
type Store struct {
	client redis.UniversalClient
	closed atomic.Bool
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New wraps an existing client. Quit closes the client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds a client from cfg.
func Open(cfg storage.RedisConfig, opts ...Option) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis backend: at least one address is required")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MasterName:   cfg.MasterName,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	s := New(client, opts...)
	s.logger.Info("redis backend configured",
		"addrs", cfg.Addrs,
		"db", cfg.DB,
		"master_name", cfg.MasterName)
	return s, nil
}

var (
	_ storage.Backend = (*Store)(nil)
	_ storage.Pinger  = (*Store)(nil)
)

// StoreKey sets key with a PX expiry.
func (s *Store) StoreKey(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	if s.closed.Load() {
		return domain.ErrBackendClosed
	}

	// go-redis treats 0 as "no expiry" and -1 as KEEPTTL, so a non-positive
	// ttl must never reach SET.
	if ttl <= 0 {
		return s.client.Del(ctx, key).Err()
	}
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	return s.client.Set(ctx, key, value, ttl).Err()
}

// GetKey reads key; redis.Nil maps to absence.
func (s *Store) GetKey(ctx context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, domain.ErrBackendClosed
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// DeleteKeys removes keys with DEL. In cluster mode keys may hash to
// different slots, so each key is deleted in one pipeline round trip.
func (s *Store) DeleteKeys(ctx context.Context, keys []string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrBackendClosed
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if _, ok := s.client.(*redis.ClusterClient); !ok {
		n, err := s.client.Del(ctx, keys...).Result()
		return int(n), err
	}

	cmds := make([]*redis.IntCmd, len(keys))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Del(ctx, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, cmd := range cmds {
		deleted += int(cmd.Val())
	}
	return deleted, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return domain.ErrBackendClosed
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Quit closes the client connection pool.
func (s *Store) Quit(_ context.Context) (storage.Release, error) {
	if s.closed.Swap(true) {
		return storage.NothingToRelease, nil
	}
	if err := s.client.Close(); err != nil {
		return storage.ReleaseFailed, fmt.Errorf("redis backend: close: %w", err)
	}
	s.logger.Info("redis backend closed")
	return storage.Released, nil
}
