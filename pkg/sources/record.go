package sources

import (
	"net/url"
	"time"
)

// Record kinds set by the generic source. Parsers and enrichers may refine
// them (EUR-Lex sets "regulation", "directive", ...).
const (
	KindSearchResults = "search_results"
	KindDocument      = "document"
	KindLatest        = "latest"
	KindProcedure     = "procedure"
	KindMEP           = "mep"
	KindConsolidated  = "consolidated_version"
	KindAkomaNtoso    = "akoma_ntoso"
)

// Record is one structured item returned by a source.
type Record struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Title     string         `json:"title,omitempty"`
	URL       string         `json:"url,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Published *time.Time     `json:"published,omitempty"`
	Content   string         `json:"content,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// SetMeta sets a metadata key, allocating the map on first use.
func (r *Record) SetMeta(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// SearchOptions narrows a search. Zero fields are ignored; each source maps
// the ones it understands onto its own query parameters.
type SearchOptions struct {
	Limit        int               `json:"limit,omitempty"`
	DocumentType string            `json:"document_type,omitempty"`
	DateFrom     time.Time         `json:"date_from,omitzero"`
	DateTo       time.Time         `json:"date_to,omitzero"`
	Author       string            `json:"author,omitempty"`
	Country      string            `json:"country,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// DefaultSearchLimit caps search results when SearchOptions.Limit is zero.
const DefaultSearchLimit = 20

// DefaultLatestLimit caps latest updates when no limit is given.
const DefaultLatestLimit = 10

// Endpoint is a request a definition wants made.
type Endpoint struct {
	Path   string     // Absolute URL, or path joined onto the base URL
	Params url.Values // Query parameters
	Parser Parser     // Overrides the source parser for this endpoint (optional)
}

// Page is one fetched response handed to a [Parser].
type Page struct {
	Source    string    // Registry key
	Kind      string    // One of the Kind* constants
	URL       string    // Fetched URL (without params)
	Params    url.Values
	ID        string // Requested document id or procedure reference, if any
	Query     string // Search query, if any
	Content   []byte
	CacheHit  bool
	FetchedAt time.Time
}
