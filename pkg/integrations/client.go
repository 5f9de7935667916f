package integrations

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/victorsole/brubru/pkg/cache"
	"github.com/victorsole/brubru/pkg/httputil"
	"github.com/victorsole/brubru/pkg/observability"
)

// Request describes one GET against a source.
type Request struct {
	URL     string            // Absolute, or relative to the client's base URL
	Params  url.Values        // Query parameters merged into URL's own query
	Headers map[string]string // Per-request header overrides
	NoCache bool              // Skip cache lookup and store
}

// Response is the outcome of a successful fetch.
type Response struct {
	Content    []byte
	CacheHit   bool
	StatusCode int // Zero for cache hits
	URL        string
}

// Client is the fetch client owned by one source. It combines the response
// cache, the rate limiter, the retry policy and the HTTP GET, and keeps
// per-source counters.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	cache   cache.Cache
	limiter *httputil.RateLimiter
	retry   httputil.RetryPolicy
	headers map[string]string
	logger  *log.Logger
	stats   counters
}

// Option configures a [Client].
type Option func(*Client)

// WithLogger sets the logger. The client prefixes it with its name.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithPrefix(c.cfg.Name)
		}
	}
}

// WithCache replaces the response cache.
func WithCache(ch cache.Cache) Option {
	return func(c *Client) {
		if ch != nil {
			c.cache = ch
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRetryPolicy replaces the retry policy. MaxAttempts from Config still
// applies when the policy leaves it zero.
func WithRetryPolicy(p httputil.RetryPolicy) Option {
	return func(c *Client) {
		if p.MaxAttempts == 0 {
			p.MaxAttempts = c.retry.MaxAttempts
		}
		c.retry = p
	}
}

// WithRateLimiter replaces the rate limiter.
func WithRateLimiter(l *httputil.RateLimiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// NewClient creates a Client from cfg. Zero UserAgent, RequestTimeout and
// MaxRetryAttempts take the package defaults. A zero RateLimitDelay sends
// requests without spacing and a zero CacheTTL disables caching; start from
// [DefaultConfig] to get the default delay and TTL.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if cfg.RateLimitDelay < 0 {
		cfg.RateLimitDelay = 0
	}

	headers := DefaultHeaders(cfg.UserAgent)
	for k, v := range cfg.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}

	retry := httputil.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.MaxRetryAttempts

	var store cache.Cache = cache.NewNull()
	if cfg.CacheTTL > 0 {
		store = cache.NewMemory()
	}

	base, _ := url.Parse(cfg.BaseURL)
	c := &Client{
		cfg:     cfg,
		base:    base,
		http:    NewHTTPClient(cfg.RequestTimeout),
		cache:   store,
		limiter: httputil.NewRateLimiter(cfg.RateLimitDelay),
		retry:   retry,
		headers: headers,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the client's display name.
func (c *Client) Name() string { return c.cfg.Name }

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Logger returns the client's prefixed logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// ResolveURL makes ref absolute against the base URL. Absolute references
// are returned unchanged; an empty ref yields the base URL.
func (c *Client) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return c.cfg.BaseURL
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || c.base == nil {
		return ref
	}
	return c.base.ResolveReference(u).String()
}

// Get fetches rawURL with params through the cache.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	resp, err := c.Fetch(ctx, Request{URL: rawURL, Params: params})
	if err != nil {
		return nil, err
	}
	return resp.Content, nil
}

// Fetch performs req.
//
// A fresh cache entry is returned without waiting on the rate limiter or
// touching the network. Otherwise the request waits for its rate-limit slot
// and is sent with the default headers merged with req.Headers, retrying
// transient failures. Errors are one of [*httputil.TransientNetworkError],
// [*httputil.HTTPStatusError] or [*httputil.OtherFetchError].
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	target := c.ResolveURL(req.URL)
	fp := cache.NewFingerprint(target, req.Params)
	trace := traceFromContext(ctx)
	useCache := !req.NoCache

	if useCache {
		if data, ok := c.cache.Get(fp); ok {
			c.stats.cacheHits.Add(1)
			if trace != nil {
				trace.hits.Add(1)
			}
			observability.Cache().OnCacheHit(ctx, c.cfg.Name)
			c.logger.Debug("cache hit", "url", target)
			return Response{Content: data, CacheHit: true, URL: target}, nil
		}
		c.stats.cacheMisses.Add(1)
		observability.Cache().OnCacheMiss(ctx, c.cfg.Name)
	}
	if trace != nil {
		trace.misses.Add(1)
	}

	fullURL, err := withQuery(target, req.Params)
	if err != nil {
		return Response{}, c.fail(ctx, fullURL, &httputil.OtherFetchError{URL: target, Err: err})
	}

	waitStart := time.Now()
	if err := c.limiter.Acquire(ctx); err != nil {
		return Response{}, c.fail(ctx, fullURL, httputil.Classify(fullURL, err))
	}
	if waited := time.Since(waitStart); waited > time.Millisecond {
		c.logger.Debug("rate limited", "wait", waited.Round(time.Millisecond))
	}

	c.logger.Info("fetching", "url", fullURL)
	content, status, err := c.get(ctx, fullURL, req.Headers)
	if err != nil {
		return Response{}, c.fail(ctx, fullURL, err)
	}

	c.stats.requestsMade.Add(1)
	c.stats.totalBytes.Add(int64(len(content)))
	c.logger.Info("fetched", "url", fullURL, "bytes", len(content))

	if useCache {
		c.cache.Put(fp, content, c.cfg.CacheTTL)
		observability.Cache().OnCacheSet(ctx, c.cfg.Name, len(content))
	}
	return Response{Content: content, StatusCode: status, URL: fullURL}, nil
}

// get runs the GET under the retry policy. Each attempt classifies its own
// transport error before returning it, so the policy sees the raw taxonomy.
func (c *Client) get(ctx context.Context, fullURL string, overrides map[string]string) ([]byte, int, error) {
	var (
		content []byte
		status  int
	)
	host, path := hostPath(fullURL)

	policy := c.retry
	policy.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.logger.Warn("retrying", "attempt", attempt, "wait", wait, "err", err)
		observability.HTTP().OnRetry(ctx, host, path, attempt, wait, err)
	}

	err := policy.Do(ctx, func(int) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return &httputil.OtherFetchError{URL: fullURL, Err: err}
		}
		httpReq.Header = mergeHeaders(c.headers, overrides)

		observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
		start := time.Now()
		resp, err := c.http.Do(httpReq)
		if err != nil {
			return httputil.Classify(fullURL, err)
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

		if err := httputil.CheckStatus(fullURL, resp.StatusCode); err != nil {
			return err
		}
		body, err := httputil.ReadBody(resp)
		if err != nil {
			return httputil.Classify(fullURL, err)
		}
		content, status = body, resp.StatusCode
		return nil
	})
	return content, status, err
}

func (c *Client) fail(ctx context.Context, fullURL string, err error) error {
	c.stats.errors.Add(1)
	host, path := hostPath(fullURL)
	observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
	c.logger.Error("fetch failed", "url", fullURL, "err", err)
	return err
}

// Stats returns a snapshot of the client's counters.
func (c *Client) Stats() AdapterStats {
	return c.stats.snapshot(c.cfg.Name, c.cfg.BaseURL, c.cache.Len(), c.limiter.Delay())
}

// ClearCache drops every cached response. Counters are kept.
func (c *Client) ClearCache() {
	c.cache.Clear()
	c.logger.Debug("cache cleared")
}

func withQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, err
	}
	if len(params) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
