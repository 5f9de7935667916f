package orchestrator

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/observability"
	"github.com/victorsole/brubru/pkg/sources"
)

// DefaultMaxConcurrent caps in-flight dispatches across all sources.
const DefaultMaxConcurrent = 5

// DefaultLatestLimit is the per-source limit of GetLatestUpdatesAll.
const DefaultLatestLimit = 5

// Orchestrator dispatches operations to registered sources under one global
// concurrency cap and aggregates their results.
//
// It is safe for concurrent use by multiple goroutines.
type Orchestrator struct {
	mu            sync.RWMutex
	adapters      map[string]sources.Adapter
	sem           *semaphore.Weighted
	maxConcurrent int
	logger        *log.Logger
	now           func() time.Time
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces the clock used for timestamps and timings.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an empty orchestrator. A non-positive maxConcurrent uses
// [DefaultMaxConcurrent].
func New(maxConcurrent int, opts ...Option) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	o := &Orchestrator{
		adapters:      make(map[string]sources.Adapter),
		sem:           semaphore.NewWeighted(int64(maxConcurrent)),
		maxConcurrent: maxConcurrent,
		logger:        log.New(io.Discard),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register adds a source. Names must be valid registry keys and unique.
func (o *Orchestrator) Register(a sources.Adapter) error {
	name := a.Name()
	if err := brerrors.ValidateSourceName(name); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.adapters[name]; exists {
		return brerrors.New(brerrors.ErrCodeInvalidInput, "source %q already registered", name)
	}
	o.adapters[name] = a
	return nil
}

// Sources returns the registered source names, sorted.
func (o *Orchestrator) Sources() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.adapters))
	for name := range o.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Adapter returns the registered source with name.
func (o *Orchestrator) Adapter(name string) (sources.Adapter, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.adapters[name]
	return a, ok
}

// MaxConcurrent returns the global concurrency cap.
func (o *Orchestrator) MaxConcurrent() int { return o.maxConcurrent }

// Dispatch runs one operation on one source and never fails: any error,
// including an unknown source or a panic inside the adapter, becomes a
// result with Success=false.
//
// Dispatch holds one permit of the global semaphore while the operation
// runs and releases it on every path. The operation runs on a context
// detached from ctx cancellation; per-request timeouts bound it instead.
func (o *Orchestrator) Dispatch(ctx context.Context, source string, op Operation, args Args) SourceResult {
	ctx = context.WithoutCancel(ctx)
	start := o.now()
	observability.Dispatch().OnDispatchStart(ctx, source, string(op))

	result := SourceResult{Source: source}
	data, cacheHit, err := o.run(ctx, source, op, args)
	elapsed := o.now().Sub(start)

	result.Timestamp = o.now().UTC()
	result.ExecutionTimeMs = millis(elapsed)
	if err != nil {
		result.Error = brerrors.UserMessage(err)
		result.ErrorCode = string(brerrors.GetCode(err))
		o.logger.Warn("source failed", "source", source, "op", op, "err", err)
	} else {
		if recs, ok := data.([]sources.Record); ok && recs == nil {
			data = []sources.Record{}
		}
		result.Success = true
		result.Data = data
		result.CacheHit = cacheHit
		o.logger.Debug("source done", "source", source, "op", op, "duration", elapsed.Round(time.Millisecond))
	}
	observability.Dispatch().OnDispatchComplete(ctx, source, string(op), elapsed, err)
	return result
}

func (o *Orchestrator) run(ctx context.Context, source string, op Operation, args Args) (data any, cacheHit bool, err error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, false, brerrors.Wrap(brerrors.ErrCodeInternal, err, "acquiring dispatch slot")
	}
	defer o.sem.Release(1)

	adapter, ok := o.Adapter(source)
	if !ok {
		return nil, false, brerrors.UnknownSource(source)
	}

	defer func() {
		if r := recover(); r != nil {
			data, cacheHit = nil, false
			err = brerrors.New(brerrors.ErrCodeInternal, "%s %s panicked: %v", source, op, r)
		}
	}()

	tctx, trace := integrations.WithTrace(ctx)
	data, err = invoke(tctx, adapter, op, args)
	if err != nil {
		return nil, false, err
	}
	return data, trace.AllCached(), nil
}

func invoke(ctx context.Context, a sources.Adapter, op Operation, args Args) (any, error) {
	switch op {
	case OpSearch:
		return a.Search(ctx, args.Query, args.searchOptions())
	case OpGetDocument:
		return a.GetDocument(ctx, args.ID)
	case OpGetLatestUpdates:
		return a.GetLatestUpdates(ctx, args.Limit)
	case OpGetProcedure:
		tracker, ok := a.(sources.ProcedureTracker)
		if !ok {
			return nil, brerrors.New(brerrors.ErrCodeUnsupported, "%s does not track procedures", a.Name())
		}
		return tracker.GetProcedure(ctx, args.ProcedureRef)
	case OpGetConsolidatedVersion, OpGetAkomaNtoso:
		archive, ok := a.(sources.LegislationArchive)
		if !ok {
			return nil, brerrors.New(brerrors.ErrCodeUnsupported, "%s does not archive legislation", a.Name())
		}
		if op == OpGetAkomaNtoso {
			return archive.GetAkomaNtoso(ctx, args.ID)
		}
		return archive.GetConsolidatedVersion(ctx, args.ID)
	case OpGetCommitteeMembers:
		dir, ok := a.(sources.CommitteeDirectory)
		if !ok {
			return nil, brerrors.New(brerrors.ErrCodeUnsupported, "%s does not list committees", a.Name())
		}
		return dir.GetCommitteeMembers(ctx, args.ID)
	default:
		return nil, brerrors.New(brerrors.ErrCodeUnsupported, "unknown operation %q", op)
	}
}

// fanOut dispatches op to every name concurrently and waits for all of them.
func (o *Orchestrator) fanOut(ctx context.Context, names []string, op Operation, args Args) AggregatedResponse {
	names = dedupe(names)
	resp := AggregatedResponse{
		RequestID:             uuid.NewString(),
		Query:                 args.Query,
		Operation:             op,
		Args:                  args,
		TotalSourcesRequested: len(names),
		Results:               make(map[string]SourceResult, len(names)),
	}
	logger := o.logger.With("request_id", resp.RequestID)
	logger.Info("dispatching", "op", op, "sources", len(names))

	start := o.now()
	results := make([]SourceResult, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = o.Dispatch(ctx, name, op, args)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		resp.Results[r.Source] = r
		if r.Success {
			resp.Successful++
		} else {
			resp.Failed++
		}
	}
	resp.TotalExecutionTimeMs = millis(o.now().Sub(start))
	resp.Timestamp = o.now().UTC()
	logger.Info("batch complete", "op", op, "successful", resp.Successful, "failed", resp.Failed,
		"duration", fmt.Sprintf("%.0fms", resp.TotalExecutionTimeMs))
	return resp
}

// SearchAll searches the named sources, or every registered source when
// names is empty. Unknown names still get a (failed) entry.
func (o *Orchestrator) SearchAll(ctx context.Context, query string, names []string, opts sources.SearchOptions) AggregatedResponse {
	if len(names) == 0 {
		names = o.Sources()
	}
	return o.fanOut(ctx, names, OpSearch, Args{Query: query, Options: &opts})
}

// GetLatestUpdatesAll collects the latest updates of every registered source.
// A non-positive limit uses [DefaultLatestLimit].
func (o *Orchestrator) GetLatestUpdatesAll(ctx context.Context, limit int) AggregatedResponse {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	return o.fanOut(ctx, o.Sources(), OpGetLatestUpdates, Args{Limit: limit})
}

// GetDocumentFromSource fetches one document. It returns an UNKNOWN_SOURCE
// error, without any network call, when source is not registered; every
// other failure is reported in the result.
func (o *Orchestrator) GetDocumentFromSource(ctx context.Context, source, id string) (SourceResult, error) {
	if _, ok := o.Adapter(source); !ok {
		return SourceResult{}, brerrors.UnknownSource(source)
	}
	return o.Dispatch(ctx, source, OpGetDocument, Args{ID: id}), nil
}

// SearchMEPs searches Members of the European Parliament by name, country or
// political group, optionally restricted to one country.
func (o *Orchestrator) SearchMEPs(ctx context.Context, query, country string) SourceResult {
	return o.Dispatch(ctx, sources.EuropeanParliament, OpSearch, Args{
		Query:   query,
		Options: &sources.SearchOptions{Country: country},
	})
}

// GetLegislationByCELEX fetches an EUR-Lex act by CELEX number.
func (o *Orchestrator) GetLegislationByCELEX(ctx context.Context, celex string) (SourceResult, error) {
	return o.GetDocumentFromSource(ctx, sources.EURLex, celex)
}

// GetConsolidatedVersion looks up the consolidated version of an EUR-Lex act.
func (o *Orchestrator) GetConsolidatedVersion(ctx context.Context, celex string) SourceResult {
	return o.Dispatch(ctx, sources.EURLex, OpGetConsolidatedVersion, Args{ID: celex})
}

// GetAkomaNtoso downloads the Akoma Ntoso XML of an EUR-Lex act.
func (o *Orchestrator) GetAkomaNtoso(ctx context.Context, celex string) SourceResult {
	return o.Dispatch(ctx, sources.EURLex, OpGetAkomaNtoso, Args{ID: celex})
}

// GetCommitteeMembers lists the MEPs sitting on a Parliament committee,
// e.g. "ENVI".
func (o *Orchestrator) GetCommitteeMembers(ctx context.Context, code string) SourceResult {
	return o.Dispatch(ctx, sources.EuropeanParliament, OpGetCommitteeMembers, Args{ID: code})
}

// AllStats returns the counters of every registered source.
func (o *Orchestrator) AllStats() map[string]integrations.AdapterStats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	stats := make(map[string]integrations.AdapterStats, len(o.adapters))
	for name, a := range o.adapters {
		stats[name] = a.Stats()
	}
	return stats
}

// ClearAllCaches clears the response cache of every registered source.
func (o *Orchestrator) ClearAllCaches() {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, a := range o.adapters {
		a.ClearCache()
	}
	o.logger.Info("cleared caches", "sources", len(o.adapters))
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
