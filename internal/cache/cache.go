// Package cache implements the query result cache: a sharded LRU keyed
// by fingerprints of (frame, version, query). Frame versions are never
// reused, so stale entries age out without explicit invalidation.
package cache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
)

var (
	ErrBadCapacity = errors.New("cache capacity too small for shard count")
	ErrBadSharding = errors.New("cache needs at least one shard")
)

// Cache stores rendered payloads under 64-bit fingerprints.
type Cache interface {
	// Get returns the payload under key and records a hit or miss.
	Get(key uint64) ([]byte, bool)
	// Add stores the payload. It reports whether entries were evicted
	// to make room.
	Add(key uint64, payload []byte) bool
	// Remove drops the entry under key, if present.
	Remove(key uint64)
	// Purge drops everything.
	Purge()
	// Count returns the number of cached entries.
	Count() int
	// Stats returns cumulative counters.
	Stats() Stats
}

// Stats holds cumulative cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Fingerprint hashes a frame name, its version, and a canonical query
// string into a cache key. Version participates so every reload keys
// fresh entries.
func Fingerprint(frame string, version uint64, query string) uint64 {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], version)

	d := xxhash.New()
	_, _ = d.WriteString(frame)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(v[:])
	_, _ = d.WriteString(query)
	return d.Sum64()
}

// New builds a cache with the given shard count and total byte budget.
// Zero maxBytes disables caching.
func New(shards int, maxBytes uint64) (Cache, error) {
	if maxBytes == 0 {
		return Null{}, nil
	}
	if shards < 1 {
		return nil, ErrBadSharding
	}
	if maxBytes < uint64(shards) {
		return nil, errors.Wrapf(ErrBadCapacity, "%d bytes across %d shards", maxBytes, shards)
	}
	return newShardedCache(shards, maxBytes), nil
}

// DefaultCapacity returns the byte budget used when config does not
// set one: a small slice of system memory.
func DefaultCapacity() uint64 {
	total := memory.TotalMemory()
	if total == 0 {
		return 64 << 20
	}
	capacity := total / 64
	if capacity < 16<<20 {
		capacity = 16 << 20
	}
	return capacity
}
