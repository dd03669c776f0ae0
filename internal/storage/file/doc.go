// Package file provides the on-disk token backend for TokStore.
//
// Entries are kept in an embedded Badger database so they survive process
// restarts. Each value is written as an envelope:
//
//	[8 bytes expiry, Unix ms, big endian][payload]
//
// Badger's native TTL has one-second resolution; it is set (rounded up) so
// the value log can reclaim expired entries, while reads compare against the
// millisecond expiry in the envelope. When an encryption key is configured
// the payload is sealed with pkg/crypto/adaptive, bound to the entry key.
package file
