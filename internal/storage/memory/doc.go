// Package memory provides the in-process token backend for TokStore.
//
// Entries live in a sharded concurrent map. Every entry owns a timer that
// evicts it when its TTL elapses; reads also check the deadline so an entry
// is never served past expiry even if its timer has not fired yet.
//
// Thread Safety:
//
// All operations are thread-safe through per-shard locking. Timer
// installation and eviction run under the owning shard's lock, so an
// eviction can only ever remove the exact entry that scheduled it.
package memory
