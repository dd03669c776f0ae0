// Package file provides the on-disk token backend for TokStore.
package file

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/pkg/crypto/adaptive"
)

const envelopeHeaderSize = 8

// errCorruptEnvelope is returned when a stored value is shorter than its header.
var errCorruptEnvelope = errors.New("file backend: corrupt value envelope")

// Store implements storage.Backend on Badger v3.
type Store struct {
	db     *badger.DB
	cfg    storage.FileConfig
	cipher adaptive.Cipher
	now    func() time.Time
	logger *slog.Logger

	lastGCTime atomic.Int64 // Unix milliseconds

	closed   atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (or creates) the Badger database in cfg.Dir.
func Open(cfg storage.FileConfig, opts ...Option) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("file backend: dir is required")
	}

	s := &Store{
		cfg:    cfg,
		now:    time.Now,
		logger: slog.Default(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.EncryptionKey != "" {
		key, err := adaptive.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("file backend: encryption key: %w", err)
		}
		c, err := adaptive.New(key)
		if err != nil {
			return nil, fmt.Errorf("file backend: cipher: %w", err)
		}
		s.cipher = c
	}

	bopts := badger.DefaultOptions(cfg.Dir)
	bopts.Logger = &badgerLogger{logger: s.logger}
	bopts.SyncWrites = cfg.SyncWrites
	bopts.DetectConflicts = false

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("file backend: open db: %w", err)
	}
	s.db = db

	go s.gcLoop()

	s.logger.Info("file backend opened",
		"dir", cfg.Dir,
		"sync_writes", cfg.SyncWrites,
		"encrypted", s.cipher != nil,
		"gc_interval", cfg.GCInterval)

	return s, nil
}

var (
	_ storage.Backend = (*Store)(nil)
	_ storage.Pinger  = (*Store)(nil)
)

// StoreKey writes value under key with the given ttl.
func (s *Store) StoreKey(_ context.Context, key string, ttl time.Duration, value []byte) error {
	if s.closed.Load() {
		return domain.ErrBackendClosed
	}

	if ttl <= 0 {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete([]byte(key))
		})
	}

	expiresAt := s.now().Add(ttl)
	envelope, err := s.seal(key, expiresAt, value)
	if err != nil {
		return err
	}

	entry := badger.NewEntry([]byte(key), envelope).WithTTL(roundUpSecond(ttl))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// GetKey reads the live value stored under key.
func (s *Store) GetKey(_ context.Context, key string) ([]byte, bool, error) {
	if s.closed.Load() {
		return nil, false, domain.ErrBackendClosed
	}

	var envelope []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		envelope, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expiresAt, value, err := s.open(key, envelope)
	if err != nil {
		return nil, false, err
	}
	if !s.now().Before(expiresAt) {
		return nil, false, nil
	}
	return value, true, nil
}

// DeleteKeys removes keys in a single transaction.
func (s *Store) DeleteKeys(_ context.Context, keys []string) (int, error) {
	if s.closed.Load() {
		return 0, domain.ErrBackendClosed
	}

	deleted := 0
	now := s.now()
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			// Badger TTLs are rounded up to the second, so the envelope
			// may already be expired while the item is still visible.
			live := true
			if err := item.Value(func(v []byte) error {
				if len(v) >= envelopeHeaderSize {
					live = now.Before(envelopeExpiry(v))
				}
				return nil
			}); err != nil {
				return err
			}
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
			if live {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() || s.db.IsClosed() {
		return domain.ErrBackendClosed
	}
	return nil
}

// Quit stops background GC and closes the database.
func (s *Store) Quit(_ context.Context) (storage.Release, error) {
	if s.closed.Swap(true) {
		return storage.NothingToRelease, nil
	}

	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return storage.ReleaseFailed, fmt.Errorf("file backend: close db: %w", err)
	}

	s.logger.Info("file backend closed", "dir", s.cfg.Dir)
	return storage.Released, nil
}

// GC runs value log garbage collection until nothing more is reclaimed and
// returns the number of rewritten value log files.
func (s *Store) GC(_ context.Context) (int, error) {
	rewrites := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return rewrites, fmt.Errorf("file backend: gc: %w", err)
		}
		rewrites++
	}

	s.lastGCTime.Store(s.now().UnixMilli())
	return rewrites, nil
}

// RegisterMetrics registers database size gauges with reg.
func (s *Store) RegisterMetrics(reg prometheus.Registerer) error {
	lsmSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tokstore",
		Subsystem: "file_backend",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	}, func() float64 {
		lsm, _ := s.db.Size()
		return float64(lsm)
	})

	vlogSize := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tokstore",
		Subsystem: "file_backend",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	}, func() float64 {
		_, vlog := s.db.Size()
		return float64(vlog)
	})

	lastGC := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "tokstore",
		Subsystem: "file_backend",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last value log GC run",
	}, func() float64 {
		return float64(s.lastGCTime.Load()) / 1000.0
	})

	for _, c := range []prometheus.Collector{lsmSize, vlogSize, lastGC} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seal(key string, expiresAt time.Time, value []byte) ([]byte, error) {
	payload := value
	if s.cipher != nil {
		sealed, err := s.cipher.Encrypt(value, []byte(key))
		if err != nil {
			return nil, fmt.Errorf("file backend: encrypt: %w", err)
		}
		payload = sealed
	}

	envelope := make([]byte, envelopeHeaderSize+len(payload))
	binary.BigEndian.PutUint64(envelope, uint64(expiresAt.UnixMilli()))
	copy(envelope[envelopeHeaderSize:], payload)
	return envelope, nil
}

func (s *Store) open(key string, envelope []byte) (time.Time, []byte, error) {
	if len(envelope) < envelopeHeaderSize {
		return time.Time{}, nil, errCorruptEnvelope
	}
	expiresAt := envelopeExpiry(envelope)
	payload := envelope[envelopeHeaderSize:]

	if s.cipher != nil {
		opened, err := s.cipher.Decrypt(payload, []byte(key))
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("file backend: decrypt: %w", err)
		}
		payload = opened
	}
	return expiresAt, payload, nil
}

// envelopeExpiry decodes the expiry header. The envelope must hold at least
// envelopeHeaderSize bytes.
func envelopeExpiry(envelope []byte) time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(envelope)))
}

func (s *Store) gcLoop() {
	defer close(s.doneCh)

	interval := s.cfg.GCInterval
	if interval <= 0 {
		interval = storage.DefaultGCInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.GC(context.Background()); err != nil {
				s.logger.Error("file backend auto gc failed", "error", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

func roundUpSecond(d time.Duration) time.Duration {
	if rem := d % time.Second; rem != 0 {
		return d - rem + time.Second
	}
	return d
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
