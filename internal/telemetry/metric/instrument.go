package metric

import (
	"context"
	"time"

	"github.com/yndnr/tokstore/internal/storage"
)

// Backend operation labels.
const (
	opStore  = "store"
	opGet    = "get"
	opDelete = "delete"
	opPing   = "ping"
	opQuit   = "quit"
)

// instrumentedBackend records a count and latency for every call.
type instrumentedBackend struct {
	next    storage.Backend
	adapter string
	reg     *Registry
}

// InstrumentBackend wraps b so every call is counted and timed. A nil
// backend stays nil so degraded mode is preserved.
func InstrumentBackend(b storage.Backend, adapter storage.Adapter, r *Registry) storage.Backend {
	if b == nil || r == nil {
		return b
	}
	return &instrumentedBackend{next: b, adapter: string(adapter), reg: r}
}

var (
	_ storage.Backend = (*instrumentedBackend)(nil)
	_ storage.Pinger  = (*instrumentedBackend)(nil)
)

func (b *instrumentedBackend) observe(op, result string, start time.Time) {
	b.reg.BackendOps.WithLabelValues(b.adapter, op, result).Inc()
	b.reg.BackendDuration.WithLabelValues(b.adapter, op).Observe(time.Since(start).Seconds())
}

func (b *instrumentedBackend) StoreKey(ctx context.Context, key string, ttl time.Duration, value []byte) error {
	start := time.Now()
	err := b.next.StoreKey(ctx, key, ttl, value)
	b.observe(opStore, resultOf(err), start)
	return err
}

func (b *instrumentedBackend) GetKey(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := b.next.GetKey(ctx, key)
	result := resultOf(err)
	if err == nil && !found {
		result = "miss"
	}
	b.observe(opGet, result, start)
	return value, found, err
}

func (b *instrumentedBackend) DeleteKeys(ctx context.Context, keys []string) (int, error) {
	start := time.Now()
	n, err := b.next.DeleteKeys(ctx, keys)
	b.observe(opDelete, resultOf(err), start)
	return n, err
}

func (b *instrumentedBackend) Ping(ctx context.Context) error {
	p, ok := b.next.(storage.Pinger)
	if !ok {
		return nil
	}
	start := time.Now()
	err := p.Ping(ctx)
	b.observe(opPing, resultOf(err), start)
	return err
}

func (b *instrumentedBackend) Quit(ctx context.Context) (storage.Release, error) {
	start := time.Now()
	rel, err := b.next.Quit(ctx)
	b.observe(opQuit, rel.String(), start)
	return rel, err
}

// Unwrap returns the decorated backend.
func (b *instrumentedBackend) Unwrap() storage.Backend {
	return b.next
}

func resultOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
