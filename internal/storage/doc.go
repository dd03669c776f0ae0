// Package storage defines the backend contract for TokStore.
//
// A Backend is a minimal expiring key-value store. The token store hands it
// fully prefixed keys, a TTL computed once at store time, and opaque
// serialized values; expiry is enforced entirely by the backend.
//
// Variants (closed set, see Adapter):
//
//   - memory: process memory with timer-based eviction (storage/memory)
//   - file:   local Badger database, durable across restarts (storage/file)
//   - redis:  networked cache with native TTL (storage/cache)
//   - none:   no backend; an external system owns session state
//
// Construction from configuration lives in storage/adapter.
package storage
