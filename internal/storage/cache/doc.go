// Package cache provides the networked token backend for TokStore.
//
// It stores entries in Redis (or any server speaking its protocol) with
// native millisecond TTLs, so several TokStore instances can share one token
// namespace. The client is a go-redis UniversalClient: one address selects a
// single node, several select cluster mode, and a master name selects
// sentinel failover.
package cache
