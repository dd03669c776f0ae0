// Package cmap provides a concurrent-safe sharded map keyed by strings.
//
// Keys are spread over a power-of-two number of shards with murmur3, each
// shard guarded by its own RWMutex. Compute and RemoveIf run their callback
// under the shard lock, which lets callers pair map mutation with side
// effects (timers, counters) without a global lock.
package cmap
