package cache

import (
	"sync"
	"time"
)

// Memory is an in-memory [Cache] with lazy expiry.
// It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[Fingerprint]Entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[Fingerprint]Entry),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for expiry. Intended for tests.
func (c *Memory) WithClock(now func() time.Time) *Memory {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the value for fp if it has not expired.
// An expired entry is removed and reported as a miss.
func (c *Memory) Get(fp Fingerprint) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fp]
	if !ok {
		return nil, false
	}
	if !entry.Fresh(c.now()) {
		delete(c.entries, fp)
		return nil, false
	}
	return entry.Value, true
}

// Put stores value under fp for ttl.
func (c *Memory) Put(fp Fingerprint, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[fp] = Entry{
		Fingerprint: fp,
		Value:       value,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// Clear removes every entry.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of stored entries.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Ensure Memory implements Cache.
var _ Cache = (*Memory)(nil)
