// Package cmap provides a concurrent-safe sharded map keyed by strings.
package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the default number of shards.
const DefaultShardCount = 16

// Map is a concurrent-safe sharded map.
type Map[V any] struct {
	shards    []*shard[V]
	shardMask uint64
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates a new sharded map with the default shard count.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards creates a new sharded map with the specified shard count.
// shardCount must be a power of 2; other values fall back to the default.
func NewWithShards[V any](shardCount int) *Map[V] {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	m := &Map[V]{
		shards:    make([]*shard[V], shardCount),
		shardMask: uint64(shardCount - 1),
	}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

// ShardCount returns the number of shards.
func (m *Map[V]) ShardCount() int {
	return len(m.shards)
}

func (m *Map[V]) getShard(key string) *shard[V] {
	return m.shards[murmur3.Sum64([]byte(key))&m.shardMask]
}

// Get retrieves a value by key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.getShard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.items[key]
	return val, ok
}

// Set stores a key-value pair and returns the previous value, if any.
func (m *Map[V]) Set(key string, value V) (V, bool) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[key]
	s.items[key] = value
	return old, ok
}

// Compute atomically replaces the value for key with the result of fn.
// fn receives the current value and whether it exists; if keep is false the
// key is removed instead. fn runs under the shard lock and must not call
// back into the map.
func (m *Map[V]) Compute(key string, fn func(old V, exists bool) (value V, keep bool)) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.items[key]
	value, keep := fn(old, exists)
	if keep {
		s.items[key] = value
		return
	}
	delete(s.items, key)
}

// Remove deletes a key and returns the removed value.
func (m *Map[V]) Remove(key string) (V, bool) {
	return m.RemoveIf(key, func(V) bool { return true })
}

// RemoveIf deletes key only when cond holds for its current value.
// cond runs under the shard lock.
func (m *Map[V]) RemoveIf(key string, cond func(value V) bool) (V, bool) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	val, ok := s.items[key]
	if !ok || !cond(val) {
		var zero V
		return zero, false
	}
	delete(s.items, key)
	return val, true
}

// Count returns the total number of items.
func (m *Map[V]) Count() int {
	count := 0
	for _, s := range m.shards {
		s.mu.RLock()
		count += len(s.items)
		s.mu.RUnlock()
	}
	return count
}

// Drain removes every item, calling fn for each removed value under its
// shard lock.
func (m *Map[V]) Drain(fn func(key string, value V)) {
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if fn != nil {
				fn(k, v)
			}
		}
		s.items = make(map[string]V)
		s.mu.Unlock()
	}
}
