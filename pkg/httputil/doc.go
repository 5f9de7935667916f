// Package httputil provides the fetch plumbing shared by every source client.
//
// # Overview
//
//   - [RetryPolicy]: bounded retry with clamped exponential backoff
//   - [RateLimiter]: minimum spacing between requests to one source
//   - [TransientNetworkError], [HTTPStatusError], [OtherFetchError]: the
//     fetch error taxonomy, produced by [Classify] and [CheckStatus]
//   - [ReadBody]: response body reading with gzip/deflate decoding
//
// # Retry
//
// [RetryPolicy.Do] retries only errors whose chain contains a
// [*TransientNetworkError]. Classification must therefore happen inside the
// attempt, on the raw transport error, before any translation into
// application errors:
//
//	err := policy.Do(ctx, func(attempt int) error {
//	    resp, err := http.DefaultClient.Do(req)
//	    if err != nil {
//	        return httputil.Classify(url, err)
//	    }
//	    ...
//	})
//
// The wait before attempt n+1 is Multiplier * Base^(n-1), clamped to
// [Min, Max]. With the defaults (3 attempts, 1s multiplier, base 2, 2s..10s)
// a failing request is tried at t=0, t≈2s and t≈4s.
//
// # Rate limiting
//
// [RateLimiter.Acquire] blocks until the configured delay has elapsed since
// the previous grant on the same limiter. Waiters are serialized, so N
// concurrent callers are spread at least delay apart.
//
// # Content encoding
//
// Clients that set Accept-Encoding themselves disable the transport's
// transparent gzip handling. [ReadBody] decodes gzip and deflate bodies in
// that case.
package httputil
