package cache

import "time"

// Null is a no-op cache that never stores anything.
// Sources configured with a zero TTL use it, and it is handy in tests.
type Null struct{}

// NewNull creates a null cache.
func NewNull() Cache {
	return Null{}
}

// Get always returns a cache miss.
func (Null) Get(Fingerprint) ([]byte, bool) { return nil, false }

// Put does nothing.
func (Null) Put(Fingerprint, []byte, time.Duration) {}

// Clear does nothing.
func (Null) Clear() {}

// Len is always zero.
func (Null) Len() int { return 0 }

// Ensure Null implements Cache.
var _ Cache = Null{}
