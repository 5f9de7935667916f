package orchestrator

import (
	"time"

	"github.com/victorsole/brubru/pkg/sources"
)

// Operation names an adapter operation the orchestrator can dispatch.
type Operation string

// Dispatchable operations.
const (
	OpSearch           Operation = "search"
	OpGetDocument      Operation = "get_document"
	OpGetLatestUpdates Operation = "get_latest_updates"
	OpGetProcedure     Operation = "get_procedure"

	OpGetConsolidatedVersion Operation = "get_consolidated_version"
	OpGetAkomaNtoso          Operation = "get_akoma_ntoso"
	OpGetCommitteeMembers    Operation = "get_committee_members"
)

// Args carries the arguments of one operation. Only the fields the
// operation uses are read.
type Args struct {
	Query        string                 `json:"query,omitempty"`
	Options      *sources.SearchOptions `json:"options,omitempty"`
	ID           string                 `json:"id,omitempty"`
	Limit        int                    `json:"limit,omitempty"`
	ProcedureRef string                 `json:"procedure_reference,omitempty"`
}

func (a Args) searchOptions() sources.SearchOptions {
	if a.Options == nil {
		return sources.SearchOptions{}
	}
	return *a.Options
}

// SourceResult is the outcome of one dispatch. Exactly one of Data and
// Error is set, according to Success.
type SourceResult struct {
	Source          string    `json:"source"`
	Success         bool      `json:"success"`
	Data            any       `json:"data"`
	Error           string    `json:"error,omitempty"`
	ErrorCode       string    `json:"error_code,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	CacheHit        bool      `json:"cache_hit"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
}

// Records returns Data as a record list: the list itself for list-valued
// operations, a single-element list for document operations, nil on failure.
func (r SourceResult) Records() []sources.Record {
	switch d := r.Data.(type) {
	case []sources.Record:
		return d
	case sources.Record:
		return []sources.Record{d}
	default:
		return nil
	}
}

// AggregatedResponse is the result of a fan-out. Results holds one entry per
// requested source, whatever its outcome.
type AggregatedResponse struct {
	RequestID             string                  `json:"request_id"`
	Query                 string                  `json:"query,omitempty"`
	Operation             Operation               `json:"operation"`
	Args                  Args                    `json:"args"`
	TotalSourcesRequested int                     `json:"total_sources_requested"`
	Successful            int                     `json:"successful"`
	Failed                int                     `json:"failed"`
	TotalExecutionTimeMs  float64                 `json:"total_execution_time_ms"`
	Timestamp             time.Time               `json:"timestamp"`
	Results               map[string]SourceResult `json:"results"`
}

// ProcedureTracking merges the three procedure sources under fixed labels.
type ProcedureTracking struct {
	RequestID            string       `json:"request_id"`
	ProcedureReference   string       `json:"procedure_reference"`
	Observatory          SourceResult `json:"observatory"`
	Timeline             SourceResult `json:"timeline"`
	Tracker              SourceResult `json:"tracker"`
	TotalExecutionTimeMs float64      `json:"total_execution_time_ms"`
	Timestamp            time.Time    `json:"timestamp"`
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
