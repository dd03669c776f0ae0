// Package memory provides the in-process token backend for TokStore.
package memory

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/pkg/cmap"
)

// Store is an expiring in-memory key-value backend.
type Store struct {
	entries *cmap.Map[*entry]
	closed  atomic.Bool
	now     func() time.Time
	logger  *slog.Logger
}

type entry struct {
	value     []byte
	expiresAt time.Time
	timer     *time.Timer
}

func (e *entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

func (e *entry) stop() {
	if e.timer != nil {
		e.timer.Stop()
	}
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the clock used for read-time expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new in-memory backend.
func New(cfg storage.MemoryConfig, opts ...Option) *Store {
	s := &Store{
		entries: cmap.NewWithShards[*entry](cfg.ShardCount),
		now:     time.Now,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ storage.Backend = (*Store)(nil)

// StoreKey stores value under key with the given ttl.
func (s *Store) StoreKey(_ context.Context, key string, ttl time.Duration, value []byte) error {
	if s.closed.Load() {
		return domain.ErrBackendClosed
	}

	if ttl <= 0 {
		// Already expired: evict whatever was there and store nothing.
		if old, ok := s.entries.Remove(key); ok {
			old.stop()
		}
		return nil
	}

	e := &entry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}

	s.entries.Compute(key, func(old *entry, exists bool) (*entry, bool) {
		if exists {
			old.stop()
		}
		e.timer = time.AfterFunc(ttl, func() { s.evict(key, e) })
		return e, true
	})

	return nil
}

// evict removes key only if it still holds e.
func (s *Store) evict(key string, e *entry) {
	if _, ok := s.entries.RemoveIf(key, func(cur *entry) bool { return cur == e }); ok {
		s.logger.Debug("memory backend evicted expired key", "key", key)
	}
}

// GetKey returns the live value stored under key.
func (s *Store) GetKey(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, domain.ErrBackendClosed
	}

	e, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(s.now()) {
		s.entries.RemoveIf(key, func(cur *entry) bool {
			if cur == e {
				cur.stop()
				return true
			}
			return false
		})
		return nil, false, nil
	}

	return append([]byte(nil), e.value...), true, nil
}

// DeleteKeys removes keys and returns how many live entries were removed.
func (s *Store) DeleteKeys(_ context.Context, keys []string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrBackendClosed
	}

	now := s.now()
	deleted := 0
	for _, key := range keys {
		e, ok := s.entries.Remove(key)
		if !ok {
			continue
		}
		e.stop()
		if !e.expired(now) {
			deleted++
		}
	}
	return deleted, nil
}

// Quit stops every eviction timer and drops all entries.
func (s *Store) Quit(_ context.Context) (storage.Release, error) {
	if s.closed.Swap(true) {
		return storage.NothingToRelease, nil
	}

	dropped := 0
	s.entries.Drain(func(_ string, e *entry) {
		e.stop()
		dropped++
	})

	s.logger.Info("memory backend closed", "dropped_entries", dropped)
	return storage.Released, nil
}

// Len returns the number of stored entries, including expired entries whose
// timers have not fired yet.
func (s *Store) Len() int {
	return s.entries.Count()
}
