package cache

import (
	"sync"
	"sync/atomic"
)

// ShardedCache spreads entries across LRU shards so concurrent request
// handlers rarely contend on one lock. Keys are already xxhash
// fingerprints, so the shard index is taken straight from the key.
type ShardedCache struct {
	capacity uint64
	shards   []*lruShard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func newShardedCache(shards int, maxBytes uint64) *ShardedCache {
	c := &ShardedCache{
		capacity: uint64(shards),
		shards:   make([]*lruShard, shards),
	}
	perShard := maxBytes / c.capacity
	if perShard == 0 {
		perShard = 1
	}
	for i := range c.shards {
		c.shards[i] = newLruShard(perShard)
	}
	return c
}

func (c *ShardedCache) Get(key uint64) ([]byte, bool) {
	payload, ok := c.shard(key).get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return payload, ok
}

func (c *ShardedCache) Add(key uint64, payload []byte) bool {
	_, evicted := c.shard(key).add(key, payload)
	if evicted > 0 {
		c.evictions.Add(uint64(evicted))
		return true
	}
	return false
}

func (c *ShardedCache) Remove(key uint64) {
	c.shard(key).remove(key)
}

func (c *ShardedCache) Purge() {
	var wg sync.WaitGroup
	wg.Add(len(c.shards))
	for i := range c.shards {
		go func(i int) {
			defer wg.Done()
			c.shards[i].purge()
		}(i)
	}
	wg.Wait()
}

func (c *ShardedCache) Count() int {
	total := 0
	for _, s := range c.shards {
		total += s.len()
	}
	return total
}

// Bytes returns the cached payload bytes summed over all shards.
func (c *ShardedCache) Bytes() uint64 {
	var total uint64
	for _, s := range c.shards {
		total += s.bytes()
	}
	return total
}

func (c *ShardedCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *ShardedCache) shard(key uint64) *lruShard {
	return c.shards[key%c.capacity]
}
