package engine

import (
	"sync"
	"sync/atomic"

	"github.com/michalgawin/checkers/internal/board"
)

// Number of shards for cache locking (power of 2 for fast modulo)
const cacheShardCount = 256
const cacheShardMask = cacheShardCount - 1

// whiteKey separates the two perspectives of the same board.
const whiteKey = 0x9E3779B97F4A7C15

// cacheEntry is one slot of the evaluation cache.
type cacheEntry struct {
	key   uint64
	score int32
	used  bool
}

// EvalCache memoizes Evaluate results keyed by board hash and perspective.
// It is shared by every search of an engine; locking is sharded.
type EvalCache struct {
	entries []cacheEntry
	shards  [cacheShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewEvalCache creates a cache with the given size in MB (minimum one shard
// worth of entries). Sizes below one MB are treated as one MB.
func NewEvalCache(sizeMB int) *EvalCache {
	if sizeMB < 1 {
		sizeMB = 1
	}
	entrySize := uint64(16)
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	if numEntries < cacheShardCount {
		numEntries = cacheShardCount
	}
	numEntries = roundDownToPowerOf2(numEntries)

	return &EvalCache{
		entries: make([]cacheEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func cacheKey(hash uint64, side board.Side) uint64 {
	if side == board.White {
		return hash ^ whiteKey
	}
	return hash
}

// Probe looks up the evaluation of a board hash for side.
func (c *EvalCache) Probe(hash uint64, side board.Side) (int, bool) {
	c.probes.Add(1)

	key := cacheKey(hash, side)
	idx := key & c.mask
	shard := idx & cacheShardMask

	c.shards[shard].RLock()
	e := c.entries[idx]
	c.shards[shard].RUnlock()

	if e.used && e.key == key {
		c.hits.Add(1)
		return int(e.score), true
	}
	return 0, false
}

// Store saves an evaluation, replacing whatever occupied the slot.
func (c *EvalCache) Store(hash uint64, side board.Side, score int) {
	key := cacheKey(hash, side)
	idx := key & c.mask
	shard := idx & cacheShardMask

	c.shards[shard].Lock()
	c.entries[idx] = cacheEntry{key: key, score: int32(score), used: true}
	c.shards[shard].Unlock()
}

// Evaluate returns the cached evaluation of b for side, computing and
// storing it on a miss.
func (c *EvalCache) Evaluate(b *board.Board, side board.Side) int {
	h := b.Hash()
	if v, ok := c.Probe(h, side); ok {
		return v
	}
	v := Evaluate(b, side)
	c.Store(h, side, v)
	return v
}

// Clear empties the cache and resets statistics.
func (c *EvalCache) Clear() {
	for i := range c.shards {
		c.shards[i].Lock()
	}
	for i := range c.entries {
		c.entries[i] = cacheEntry{}
	}
	for i := range c.shards {
		c.shards[i].Unlock()
	}
	c.hits.Store(0)
	c.probes.Store(0)
}

// HitRate returns the cache hit rate as a percentage.
func (c *EvalCache) HitRate() float64 {
	probes := c.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the cache.
func (c *EvalCache) Size() uint64 {
	return c.size
}
