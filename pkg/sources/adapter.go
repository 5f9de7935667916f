package sources

import (
	"context"

	"github.com/victorsole/brubru/pkg/integrations"
)

// Adapter is the capability set every source exposes to the orchestrator.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Name returns the registry key (e.g. "eurlex").
	Name() string

	// DisplayName returns the human-readable name (e.g. "EUR-Lex").
	DisplayName() string

	// Search returns records matching query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]Record, error)

	// GetDocument returns one record by source-specific id.
	// A missing document yields an error with code NOT_FOUND.
	GetDocument(ctx context.Context, id string) (Record, error)

	// GetLatestUpdates returns at most limit recent records, newest first.
	GetLatestUpdates(ctx context.Context, limit int) ([]Record, error)

	// Stats returns the source client's counters.
	Stats() integrations.AdapterStats

	// ClearCache drops every cached response of the source.
	ClearCache()
}

// ProcedureTracker is implemented by sources that follow legislative
// procedures (OEIL, Legislative Train, Law Tracker).
type ProcedureTracker interface {
	GetProcedure(ctx context.Context, ref string) (Record, error)
}

// LegislationArchive is implemented by sources that serve consolidated acts
// and Akoma Ntoso XML (EUR-Lex).
type LegislationArchive interface {
	// GetConsolidatedVersion looks up the consolidated CELEX number of an act.
	// An act without one yields a record with "available" set to false.
	GetConsolidatedVersion(ctx context.Context, celex string) (Record, error)

	// GetAkomaNtoso downloads the Akoma Ntoso XML of an act. A remote HTTP
	// error yields a record with "available" set to false.
	GetAkomaNtoso(ctx context.Context, celex string) (Record, error)
}

// CommitteeDirectory is implemented by sources that list the members of a
// parliamentary committee (European Parliament).
type CommitteeDirectory interface {
	GetCommitteeMembers(ctx context.Context, code string) ([]Record, error)
}
