package integrations

import (
	"context"
	"sync/atomic"
)

// Trace counts cache hits and live fetches made under one context.
// The orchestrator attaches a Trace to each dispatch to report whether the
// whole result was served from cache.
type Trace struct {
	hits   atomic.Int64
	misses atomic.Int64
}

type traceKey struct{}

// WithTrace returns a child context carrying a fresh Trace.
func WithTrace(ctx context.Context) (context.Context, *Trace) {
	t := &Trace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

func traceFromContext(ctx context.Context) *Trace {
	t, _ := ctx.Value(traceKey{}).(*Trace)
	return t
}

// Hits returns the number of fetches served from cache.
func (t *Trace) Hits() int64 { return t.hits.Load() }

// Misses returns the number of fetches that went to the network.
func (t *Trace) Misses() int64 { return t.misses.Load() }

// AllCached reports whether at least one fetch happened and every fetch was a hit.
func (t *Trace) AllCached() bool {
	return t.hits.Load() > 0 && t.misses.Load() == 0
}
