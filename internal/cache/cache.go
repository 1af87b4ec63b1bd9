// Package cache memoizes execution results keyed by workflow identity and a
// deterministic hash of the execution context.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// entry holds one cached result with its expiry and access bookkeeping.
type entry struct {
	value      any
	storedAt   time.Time
	accessedAt time.Time
}

// ExecutionCache is a TTL + LRU cache for execution results. Expired entries
// are treated as absent and evicted lazily on lookup; inserts at capacity
// evict the least-recently-accessed entry first.
//
// Values are stored as opaque any; callers type-assert on retrieval and
// treat a failed assertion as a corrupt entry (evict and miss, never error).
type ExecutionCache struct {
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry

	// now is replaceable in tests to control expiry.
	now func() time.Time
}

// New creates a cache with the given TTL and capacity. Non-positive values
// fall back to 1 hour and 1000 entries.
func New(ttl time.Duration, maxEntries int, logger *slog.Logger) *ExecutionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
}

// Key computes the deterministic cache key for a workflow identity and a
// context snapshot. Snapshot keys are sorted before hashing so the key never
// depends on map iteration order.
func Key(workflowName, workflowVersion string, snapshot map[string]any) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s@%s\n", workflowName, workflowVersion)

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		serialized, err := json.Marshal(snapshot[k])
		if err != nil {
			// unserializable values still hash deterministically by type
			serialized = []byte(fmt.Sprintf("%T", snapshot[k]))
		}
		fmt.Fprintf(h, "%s=%s\n", k, serialized)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the value stored under key. Expired entries are evicted and
// reported as absent. A hit refreshes the entry's access time.
func (c *ExecutionCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	e.accessedAt = c.now()
	return e.value, true
}

// Put stores a value under key, evicting the least-recently-accessed entry
// first when at capacity.
func (c *ExecutionCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	now := c.now()
	c.entries[key] = &entry{value: value, storedAt: now, accessedAt: now}
}

// Evict removes the entry under key, if present. Used when a caller finds a
// stored value corrupt.
func (c *ExecutionCache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the current number of entries, including any not yet lazily
// expired.
func (c *ExecutionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ExecutionCache) evictOldestLocked() {
	var oldestKey string
	var oldestAccess time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.accessedAt.Before(oldestAccess) {
			oldestKey = k
			oldestAccess = e.accessedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.logger.Debug("cache evicted least recently used entry", "key", oldestKey)
	}
}
