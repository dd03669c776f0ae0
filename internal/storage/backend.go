// Package storage defines the backend contract for TokStore.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend is an expiring key-value store.
//
// Implementations must be safe for concurrent use without external locking.
// Absence is not an error: GetKey reports it through found.
type Backend interface {
	// StoreKey stores value under key, to expire ttl after the call.
	// A ttl <= 0 yields an entry that is already expired: it is evicted
	// immediately and never observable through GetKey.
	StoreKey(ctx context.Context, key string, ttl time.Duration, value []byte) error

	// GetKey returns the value stored under key.
	GetKey(ctx context.Context, key string) (value []byte, found bool, err error)

	// DeleteKeys removes keys in one batch and returns how many existed.
	DeleteKeys(ctx context.Context, keys []string) (int, error)

	// Quit releases the backend's underlying resources. It is idempotent:
	// calls after the first report NothingToRelease.
	Quit(ctx context.Context) (Release, error)
}

// Pinger is implemented by backends that can probe their medium.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Release is the outcome of Quit.
type Release int

const (
	// NothingToRelease means no resource was held (or it was already released).
	NothingToRelease Release = iota

	// Released means a held resource was released.
	Released

	// ReleaseFailed means releasing the resource returned an error.
	ReleaseFailed
)

// String returns the release outcome name.
func (r Release) String() string {
	switch r {
	case NothingToRelease:
		return "nothing_to_release"
	case Released:
		return "released"
	case ReleaseFailed:
		return "release_failed"
	default:
		return fmt.Sprintf("release(%d)", int(r))
	}
}

// Adapter names a backend variant.
type Adapter string

// Backend variants.
const (
	AdapterMemory Adapter = "memory"
	AdapterFile   Adapter = "file"
	AdapterRedis  Adapter = "redis"
	AdapterNone   Adapter = "none"
)

// Adapters lists every supported variant.
var Adapters = []Adapter{AdapterMemory, AdapterFile, AdapterRedis, AdapterNone}

// ParseAdapter parses a configured adapter name. The empty string is not a
// valid adapter; use ResolveAdapter to apply defaults.
func ParseAdapter(name string) (Adapter, error) {
	switch a := Adapter(strings.ToLower(strings.TrimSpace(name))); a {
	case AdapterMemory, AdapterFile, AdapterRedis, AdapterNone:
		return a, nil
	default:
		return "", fmt.Errorf("unknown session adapter %q (want one of memory, file, redis, none)", name)
	}
}

// ResolveAdapter applies the selection defaults: an explicit name wins;
// otherwise none when the user directory already manages sessions, memory
// in every other case.
func ResolveAdapter(name string, directoryManagesSessions bool) (Adapter, error) {
	if strings.TrimSpace(name) != "" {
		return ParseAdapter(name)
	}
	if directoryManagesSessions {
		return AdapterNone, nil
	}
	return AdapterMemory, nil
}
