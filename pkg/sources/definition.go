package sources

import (
	"time"

	"github.com/victorsole/brubru/pkg/integrations"
)

// Definition describes one EU source: where it lives and how its operations
// map onto requests. [New] turns a Definition into an [Adapter].
//
// Search and Document are required. Latest is optional; without it the
// source reports no latest updates. Procedure is optional; with it the
// adapter also implements [ProcedureTracker]. Consolidated and AkomaNtoso
// together make it a [LegislationArchive]; Committee makes it a
// [CommitteeDirectory].
type Definition struct {
	Key            string        // Registry key, e.g. "eurlex"
	DisplayName    string        // e.g. "EUR-Lex"
	BaseURL        string        // Root that relative endpoint paths join onto
	RateLimitDelay time.Duration // Zero uses the engine default

	Search    func(query string, opts SearchOptions) Endpoint
	Document  func(id string) Endpoint
	Latest    func(now time.Time, limit int) Endpoint
	Procedure func(ref string) Endpoint

	Consolidated func(celex string) Endpoint
	AkomaNtoso   func(celex string) Endpoint
	Committee    func(code string) Endpoint

	// ValidateID checks a document id before any request is made. Optional.
	ValidateID func(id string) error

	// Enrich adjusts every record the source returns. Optional.
	Enrich func(rec *Record)
}

// ClientConfig returns the client configuration implied by the definition,
// with package defaults for everything it does not set.
func (d Definition) ClientConfig() integrations.Config {
	cfg := integrations.DefaultConfig(d.DisplayName, d.BaseURL)
	if d.RateLimitDelay > 0 {
		cfg.RateLimitDelay = d.RateLimitDelay
	}
	return cfg
}

// TracksProcedures reports whether the definition supports GetProcedure.
func (d Definition) TracksProcedures() bool { return d.Procedure != nil }

// ArchivesLegislation reports whether the definition serves consolidated
// versions and Akoma Ntoso XML.
func (d Definition) ArchivesLegislation() bool {
	return d.Consolidated != nil && d.AkomaNtoso != nil
}

// ListsCommittees reports whether the definition has a committee members page.
func (d Definition) ListsCommittees() bool { return d.Committee != nil }
