package engine

import (
	"github.com/dshills/gonodes/pkg/graph"
	"github.com/dshills/gonodes/pkg/value"
)

// FNV-1a 64-bit parameters.
const (
	fnvBasis uint64 = 14695981039346656037
	fnvPrime uint64 = 1099511628211
)

// maxCachedOutputs bounds the per-entry output storage. Nodes with more
// outputs simply bypass the cache; this keeps entries fixed-size.
const maxCachedOutputs = 16

// DefaultCacheCapacity matches a graph of a few thousand nodes with a
// healthy mix of pure subgraphs.
const DefaultCacheCapacity = 1024

// cacheEntry stores one memoized result: the input hash it was computed
// from, the node type that produced it, and the output values.
type cacheEntry struct {
	hash        uint64
	typeID      int32
	outputCount int
	outputs     [maxCachedOutputs]value.Value
	lastAccess  uint64 // logical tick of last lookup hit or store
}

// CacheStats is a point-in-time snapshot of cache counters. Hits and
// misses are monotonic for the cache's lifetime and reset only on Clear.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	HitRate float64
}

// MemoCache is the content-addressed memoization cache for pure node
// results, keyed by an FNV-1a hash over (node type id, raw bytes of the
// input pin values in pin order).
//
// The cache is intentionally not thread-safe: it is owned exclusively by
// one evaluating engine at a time. Sharing it across parallel workers
// requires a sharded or lock-protected redesign.
type MemoCache struct {
	entries  []cacheEntry
	capacity int
	tick     uint64
	hits     uint64
	misses   uint64
	scratch  []byte // reused hashing buffer, avoids per-lookup allocation
}

// NewMemoCache creates a cache holding up to capacity entries.
// A capacity below 1 falls back to DefaultCacheCapacity.
func NewMemoCache(capacity int) *MemoCache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &MemoCache{
		entries:  make([]cacheEntry, 0, capacity),
		capacity: capacity,
		scratch:  make([]byte, 0, 256),
	}
}

// AdvanceTick increments the logical tick used for LRU accounting.
// The engine calls this once at the start of every tick.
func (c *MemoCache) AdvanceTick() {
	c.tick++
}

// Tick returns the current logical tick.
func (c *MemoCache) Tick() uint64 {
	return c.tick
}

// Lookup consults the cache for the node's current inputs. On a hit the
// stored outputs are copied onto the node's output pins and true is
// returned. Only pure node types are ever cached; a hit additionally
// requires the entry's type and output arity to match, so colliding
// hashes from different types are misses, never false hits.
func (c *MemoCache) Lookup(n *graph.Node) bool {
	if !n.Pure() || len(n.Outputs) > maxCachedOutputs {
		return false
	}

	hash := c.hashNode(n)
	for i := range c.entries {
		e := &c.entries[i]
		if e.hash == hash && e.typeID == n.Type.ID && e.outputCount == len(n.Outputs) {
			for j := 0; j < e.outputCount; j++ {
				n.Outputs[j].Value = e.outputs[j]
			}
			e.lastAccess = c.tick
			c.hits++
			return true
		}
	}

	c.misses++
	return false
}

// Store inserts or refreshes the entry for the node's current inputs and
// outputs. When the cache is full, the entry with the oldest last-access
// tick is evicted (true LRU; the linear scan is fine at this size).
// Store never fails.
func (c *MemoCache) Store(n *graph.Node) {
	if !n.Pure() || len(n.Outputs) > maxCachedOutputs {
		return
	}

	hash := c.hashNode(n)

	var entry *cacheEntry
	for i := range c.entries {
		if c.entries[i].hash == hash && c.entries[i].typeID == n.Type.ID {
			entry = &c.entries[i]
			break
		}
	}

	if entry == nil {
		if len(c.entries) < c.capacity {
			c.entries = append(c.entries, cacheEntry{})
			entry = &c.entries[len(c.entries)-1]
		} else {
			oldest := 0
			for i := 1; i < len(c.entries); i++ {
				if c.entries[i].lastAccess < c.entries[oldest].lastAccess {
					oldest = i
				}
			}
			entry = &c.entries[oldest]
		}
	}

	entry.hash = hash
	entry.typeID = n.Type.ID
	entry.outputCount = len(n.Outputs)
	for i := range n.Outputs {
		entry.outputs[i] = n.Outputs[i].Value
	}
	entry.lastAccess = c.tick
}

// Clear drops all entries and resets the hit/miss counters.
func (c *MemoCache) Clear() {
	c.entries = c.entries[:0]
	c.hits = 0
	c.misses = 0
}

// Stats returns current cache statistics.
func (c *MemoCache) Stats() CacheStats {
	stats := CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// hashNode computes the FNV-1a hash over the node's type id followed by
// every input pin value's canonical bytes, in pin order. Unconnected
// inputs participate too: they hold their last value, which the behavior
// will observe, so it must key the cache.
func (c *MemoCache) hashNode(n *graph.Node) uint64 {
	h := fnvBasis

	typeID := uint32(n.Type.ID)
	for shift := 0; shift < 32; shift += 8 {
		h ^= uint64(byte(typeID >> shift))
		h *= fnvPrime
	}

	for i := range n.Inputs {
		c.scratch = n.Inputs[i].Value.AppendBytes(c.scratch[:0])
		for _, b := range c.scratch {
			h ^= uint64(b)
			h *= fnvPrime
		}
	}

	return h
}
