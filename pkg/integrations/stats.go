package integrations

import (
	"sync/atomic"
	"time"
)

// AdapterStats is a point-in-time snapshot of a client's counters.
type AdapterStats struct {
	Name           string  `json:"name"`
	BaseURL        string  `json:"base_url"`
	RequestsMade   int64   `json:"requests_made"`
	CacheHits      int64   `json:"cache_hits"`
	CacheMisses    int64   `json:"cache_misses"`
	Errors         int64   `json:"errors"`
	TotalBytes     int64   `json:"total_bytes"`
	CacheSize      int     `json:"cache_size"`
	RateLimitDelay float64 `json:"rate_limit_delay"` // seconds
}

// HitRate returns CacheHits / (CacheHits + CacheMisses), or 0 with no lookups.
func (s AdapterStats) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// counters are updated concurrently by fetches; each field is independent.
type counters struct {
	requestsMade atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errors       atomic.Int64
	totalBytes   atomic.Int64
}

func (c *counters) snapshot(name, baseURL string, cacheSize int, delay time.Duration) AdapterStats {
	return AdapterStats{
		Name:           name,
		BaseURL:        baseURL,
		RequestsMade:   c.requestsMade.Load(),
		CacheHits:      c.cacheHits.Load(),
		CacheMisses:    c.cacheMisses.Load(),
		Errors:         c.errors.Load(),
		TotalBytes:     c.totalBytes.Load(),
		CacheSize:      cacheSize,
		RateLimitDelay: delay.Seconds(),
	}
}
