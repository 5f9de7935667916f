// Package cache provides the per-source response cache.
//
// # Overview
//
// Every source client owns one [Cache]. Entries are keyed by a [Fingerprint]
// derived from the request URL and its sorted query parameters, and expire a
// fixed TTL after they were stored:
//
//   - [Memory]: process-local map with lazy expiry
//   - [Null]: never stores anything (caching disabled)
//
// # Expiry
//
// An entry is readable only while now < ExpiresAt. Expired entries are not
// swept in the background; the access that finds an entry expired removes it
// and reports a miss.
//
// # Memory growth
//
// [Memory] has no capacity bound. Entries that are never read again stay in
// memory until [Cache.Clear] is called or the process exits. With a fixed TTL
// and process-lifetime scope this is accepted; callers that issue unbounded
// distinct requests should clear periodically.
package cache

import "time"

// Cache stores fetched content by request fingerprint.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value if present and not expired.
	Get(fp Fingerprint) ([]byte, bool)

	// Put stores value with ExpiresAt = now + ttl, overwriting any prior
	// entry. A non-positive ttl stores nothing.
	Put(fp Fingerprint, value []byte, ttl time.Duration)

	// Clear removes all entries.
	Clear()

	// Len returns the number of stored entries, expired ones included.
	Len() int
}

// Entry is a single cached value with its lifetime.
type Entry struct {
	Fingerprint Fingerprint
	Value       []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Fresh reports whether the entry is still readable at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
