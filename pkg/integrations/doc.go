// Package integrations provides the fetch client shared by every EU source.
//
// # Overview
//
// Each source owns one [Client], built from a [Config]:
//
//	client := integrations.NewClient(integrations.Config{
//	    Name:           "EUR-Lex",
//	    BaseURL:        "https://eur-lex.europa.eu",
//	    RateLimitDelay: 1500 * time.Millisecond,
//	    CacheTTL:       time.Hour,
//	}, integrations.WithLogger(logger))
//
//	body, err := client.Get(ctx, "/search.html", url.Values{"text": {"climate"}})
//
// # Fetch pipeline
//
// [Client.Fetch] runs, in order:
//
//  1. Cache lookup by [cache.Fingerprint]. A hit returns immediately and
//     never waits on the rate limiter.
//  2. Rate-limit wait on the client's own [httputil.RateLimiter].
//  3. HTTP GET with [DefaultHeaders] merged with per-request overrides,
//     under the client's [httputil.RetryPolicy].
//  4. Cache store on success.
//
// Every step updates the client's counters, available through
// [Client.Stats] as an [AdapterStats] snapshot.
//
// # Errors
//
// Fetch failures are typed: [httputil.TransientNetworkError] (retried),
// [httputil.HTTPStatusError] (any non-2xx, never retried) and
// [httputil.OtherFetchError]. All carry the URL and the underlying cause.
//
// # Tracing
//
// [WithTrace] attaches a [Trace] to a context; every fetch made under that
// context records whether it was served from cache.
//
// [cache.Fingerprint]: github.com/victorsole/brubru/pkg/cache.Fingerprint
// [httputil.RateLimiter]: github.com/victorsole/brubru/pkg/httputil.RateLimiter
// [httputil.RetryPolicy]: github.com/victorsole/brubru/pkg/httputil.RetryPolicy
// [httputil.TransientNetworkError]: github.com/victorsole/brubru/pkg/httputil.TransientNetworkError
// [httputil.HTTPStatusError]: github.com/victorsole/brubru/pkg/httputil.HTTPStatusError
// [httputil.OtherFetchError]: github.com/victorsole/brubru/pkg/httputil.OtherFetchError
package integrations
