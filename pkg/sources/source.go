package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/httputil"
	"github.com/victorsole/brubru/pkg/integrations"
)

// Source is the generic [Adapter] built from a [Definition]. The fetch client
// is embedded so its Stats and ClearCache satisfy the interface directly.
type Source struct {
	*integrations.Client
	def    Definition
	parser Parser
	now    func() time.Time
}

// Option configures a [Source].
type Option func(*sourceOptions)

type sourceOptions struct {
	parser     Parser
	clientOpts []integrations.Option
	now        func() time.Time
}

// WithParser replaces the default [RawParser].
func WithParser(p Parser) Option {
	return func(o *sourceOptions) {
		if p != nil {
			o.parser = p
		}
	}
}

// WithClientOptions passes options through to the fetch client.
func WithClientOptions(opts ...integrations.Option) Option {
	return func(o *sourceOptions) { o.clientOpts = append(o.clientOpts, opts...) }
}

// WithClock replaces the clock used for FetchedAt and date-relative endpoints.
func WithClock(now func() time.Time) Option {
	return func(o *sourceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// New builds the adapter for def using cfg for its fetch client.
// The returned adapter also implements [ProcedureTracker],
// [LegislationArchive] or [CommitteeDirectory] when def declares the
// matching endpoints.
func New(def Definition, cfg integrations.Config, opts ...Option) Adapter {
	o := sourceOptions{parser: RawParser{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Name == "" {
		cfg.Name = def.DisplayName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}

	s := &Source{
		Client: integrations.NewClient(cfg, o.clientOpts...),
		def:    def,
		parser: o.parser,
		now:    o.now,
	}
	switch {
	case def.TracksProcedures():
		return &TrackingSource{Source: s}
	case def.ArchivesLegislation():
		return &ArchiveSource{Source: s}
	case def.ListsCommittees():
		return &CommitteeSource{Source: s}
	}
	return s
}

// Name returns the registry key.
func (s *Source) Name() string { return s.def.Key }

// DisplayName returns the human-readable source name.
func (s *Source) DisplayName() string { return s.def.DisplayName }

// Definition returns the definition the source was built from.
func (s *Source) Definition() Definition { return s.def }

// Search fetches the definition's search endpoint and parses the results.
// At most opts.Limit records are returned (default [DefaultSearchLimit]).
func (s *Source) Search(ctx context.Context, query string, opts SearchOptions) ([]Record, error) {
	if err := brerrors.ValidateQuery(query); err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	ep := s.def.Search(query, opts)
	recs, err := s.fetchParse(ctx, ep, Page{Kind: KindSearchResults, Query: query})
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", s.def.Key, err)
	}
	return truncate(recs, limit), nil
}

// GetDocument fetches one document. A 404 from the remote or a page the
// parser finds empty is reported as NOT_FOUND.
func (s *Source) GetDocument(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if err := brerrors.ValidateDocumentID(id); err != nil {
		return Record{}, err
	}
	if s.def.ValidateID != nil {
		if err := s.def.ValidateID(id); err != nil {
			return Record{}, err
		}
	}
	return s.fetchOne(ctx, s.def.Document(id), KindDocument, id)
}

// GetLatestUpdates returns at most limit recent records, newest first.
// Sources without a latest endpoint return an empty list.
func (s *Source) GetLatestUpdates(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	if s.def.Latest == nil {
		return []Record{}, nil
	}

	ep := s.def.Latest(s.now(), limit)
	recs, err := s.fetchParse(ctx, ep, Page{Kind: KindLatest})
	if err != nil {
		return nil, fmt.Errorf("%s latest updates: %w", s.def.Key, err)
	}
	sortNewestFirst(recs)
	return truncate(recs, limit), nil
}

func (s *Source) fetchOne(ctx context.Context, ep Endpoint, kind, id string) (Record, error) {
	recs, err := s.fetchParse(ctx, ep, Page{Kind: kind, ID: id})
	if err != nil {
		if httputil.IsNotFound(err) {
			return Record{}, brerrors.NotFound(s.def.Key, id, err)
		}
		return Record{}, fmt.Errorf("%s %s %s: %w", s.def.Key, kind, id, err)
	}
	if len(recs) == 0 {
		return Record{}, brerrors.NotFound(s.def.Key, id, nil)
	}
	rec := recs[0]
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

// fetchRaw fetches ep and returns the response with the joined target URL.
func (s *Source) fetchRaw(ctx context.Context, ep Endpoint) (integrations.Response, string, error) {
	target := joinURL(s.BaseURL(), ep.Path)
	resp, err := s.Fetch(ctx, integrations.Request{URL: target, Params: ep.Params})
	return resp, target, err
}

func (s *Source) fetchParse(ctx context.Context, ep Endpoint, page Page) ([]Record, error) {
	resp, target, err := s.fetchRaw(ctx, ep)
	if err != nil {
		return nil, err
	}

	page.Source = s.def.Key
	page.URL = target
	page.Params = ep.Params
	page.Content = resp.Content
	page.CacheHit = resp.CacheHit
	page.FetchedAt = s.now().UTC()

	parser := s.parser
	if ep.Parser != nil {
		parser = ep.Parser
	}
	recs, err := parser.Parse(page)
	if err != nil {
		return nil, brerrors.Wrap(brerrors.ErrCodeInternal, err, "parsing %s", target)
	}

	for i := range recs {
		if recs[i].Source == "" {
			recs[i].Source = s.def.Key
		}
		if recs[i].FetchedAt.IsZero() {
			recs[i].FetchedAt = page.FetchedAt
		}
		if recs[i].URL != "" {
			recs[i].URL = s.ResolveURL(recs[i].URL)
		}
		if s.def.Enrich != nil {
			s.def.Enrich(&recs[i])
		}
	}
	return recs, nil
}

// TrackingSource is a [Source] whose definition follows legislative
// procedures.
type TrackingSource struct {
	*Source
}

// GetProcedure fetches the procedure file for ref (e.g. "2021/0106(COD)").
func (s *TrackingSource) GetProcedure(ctx context.Context, ref string) (Record, error) {
	ref = strings.TrimSpace(ref)
	if err := ValidateProcedureReference(ref); err != nil {
		return Record{}, err
	}
	rec, err := s.fetchOne(ctx, s.def.Procedure(ref), KindProcedure, ref)
	if err != nil {
		return Record{}, err
	}
	rec.SetMeta("procedure_reference", ref)
	return rec, nil
}

// joinURL appends p to base unless p is already absolute.
func joinURL(base, p string) string {
	if p == "" {
		return base
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

func truncate(recs []Record, limit int) []Record {
	if recs == nil {
		return []Record{}
	}
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

// sortNewestFirst orders dated records newest first; undated records keep
// their relative order after them.
func sortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Published, recs[j].Published
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// Ensure the generic sources implement the capability interfaces.
var (
	_ Adapter          = (*Source)(nil)
	_ Adapter          = (*TrackingSource)(nil)
	_ ProcedureTracker = (*TrackingSource)(nil)
)
