package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(n int) []byte {
	return []byte(fmt.Sprintf("%010d", n))
}

func TestShardedCache_AddAndGet(t *testing.T) {
	t.Parallel()

	c := newShardedCache(4, 1<<20)

	for i := 0; i < 100; i++ {
		c.Add(uint64(i), payload(i))
	}

	for i := 0; i < 100; i++ {
		got, ok := c.Get(uint64(i))
		require.True(t, ok)
		assert.Equal(t, payload(i), got)
	}

	assert.Equal(t, 100, c.Count())
	stats := c.Stats()
	assert.Equal(t, uint64(100), stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.Evictions)
}

func TestShardedCache_evictsOldestFirst(t *testing.T) {
	t.Parallel()

	// One shard holding ten 10-byte payloads.
	c := newShardedCache(1, 100)

	for i := 0; i < 10; i++ {
		evicted := c.Add(uint64(i), payload(i))
		assert.False(t, evicted)
	}

	evicted := c.Add(10, payload(10))
	assert.True(t, evicted)

	_, ok := c.Get(0)
	assert.False(t, ok, "oldest entry should be gone")
	_, ok = c.Get(10)
	assert.True(t, ok)
	assert.Equal(t, 10, c.Count())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestShardedCache_getRefreshesRecency(t *testing.T) {
	t.Parallel()

	c := newShardedCache(1, 100)

	for i := 0; i < 10; i++ {
		c.Add(uint64(i), payload(i))
	}

	// Touching the oldest entry saves it from the next eviction.
	_, ok := c.Get(0)
	require.True(t, ok)

	c.Add(10, payload(10))

	_, ok = c.Get(0)
	assert.True(t, ok)
	_, ok = c.Get(1)
	assert.False(t, ok)
}

func TestShardedCache_updateInPlace(t *testing.T) {
	t.Parallel()

	c := newShardedCache(1, 100)

	c.Add(1, []byte("short"))
	c.Add(1, []byte("a longer payload"))

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []byte("a longer payload"), got)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, uint64(len("a longer payload")), c.Bytes())
}

func TestShardedCache_oversizedPayloadNotCached(t *testing.T) {
	t.Parallel()

	c := newShardedCache(1, 100)

	c.Add(1, make([]byte, 101))

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Zero(t, c.Count())
}

func TestShardedCache_Remove(t *testing.T) {
	t.Parallel()

	c := newShardedCache(2, 1024)

	c.Add(1, payload(1))
	c.Add(2, payload(2))
	c.Remove(1)

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, uint64(10), c.Bytes())
}

func TestShardedCache_Purge(t *testing.T) {
	t.Parallel()

	c := newShardedCache(4, 1024)

	for i := 0; i < 20; i++ {
		c.Add(uint64(i), payload(i))
	}
	require.NotZero(t, c.Count())

	c.Purge()
	assert.Zero(t, c.Count())
	assert.Zero(t, c.Bytes())

	_, ok := c.Get(3)
	assert.False(t, ok)
}

func TestShardedCache_missCounts(t *testing.T) {
	t.Parallel()

	c := newShardedCache(2, 1024)

	_, ok := c.Get(42)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Misses)
}
