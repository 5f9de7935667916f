package integrations

import (
	"net/http"
	"strings"
	"time"
)

// Defaults applied when a [Config] field is zero.
const (
	DefaultUserAgent        = "Brubru/1.0 (EU Policy Intelligence; +https://brubru.world)"
	DefaultRateLimitDelay   = time.Second
	DefaultCacheTTL         = time.Hour
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMaxRetryAttempts = 3
)

// Config describes one source client.
type Config struct {
	Name             string        // Display name used in logs and stats
	BaseURL          string        // Root URL relative references resolve against
	RateLimitDelay   time.Duration // Minimum spacing between live requests; zero for none
	CacheTTL         time.Duration // Zero disables caching
	RequestTimeout   time.Duration // Per-attempt HTTP timeout
	MaxRetryAttempts int           // Attempts per fetch, including the first
	UserAgent        string
	Headers          map[string]string // Extra default headers
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig(name, baseURL string) Config {
	return Config{
		Name:             name,
		BaseURL:          baseURL,
		RateLimitDelay:   DefaultRateLimitDelay,
		CacheTTL:         DefaultCacheTTL,
		RequestTimeout:   DefaultRequestTimeout,
		MaxRetryAttempts: DefaultMaxRetryAttempts,
		UserAgent:        DefaultUserAgent,
	}
}

// DefaultHeaders returns the browser-like header set sent with every request.
func DefaultHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return map[string]string{
		"User-Agent":                userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept-Encoding":           "gzip, deflate",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}

// NewHTTPClient creates an HTTP client with the given per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

// mergeHeaders layers overrides on top of defaults. Keys are compared
// case-insensitively so "user-agent" replaces "User-Agent".
func mergeHeaders(defaults, overrides map[string]string) http.Header {
	h := make(http.Header, len(defaults)+len(overrides))
	for k, v := range defaults {
		h.Set(k, v)
	}
	for k, v := range overrides {
		h.Set(strings.TrimSpace(k), v)
	}
	return h
}
