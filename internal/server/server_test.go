package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/orchestrator"
	"github.com/victorsole/brubru/pkg/sources"
)

type stubAdapter struct {
	name    string
	fail    bool
	calls   atomic.Int32
	cleared atomic.Int32
}

func (s *stubAdapter) Name() string        { return s.name }
func (s *stubAdapter) DisplayName() string { return "Stub " + s.name }

func (s *stubAdapter) Search(_ context.Context, q string, opts sources.SearchOptions) ([]sources.Record, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, errors.New("upstream down")
	}
	return []sources.Record{{ID: q, Source: s.name, Metadata: map[string]any{"limit": opts.Limit}}}, nil
}

func (s *stubAdapter) GetDocument(_ context.Context, id string) (sources.Record, error) {
	s.calls.Add(1)
	return sources.Record{ID: id, Source: s.name, Kind: sources.KindDocument}, nil
}

func (s *stubAdapter) GetLatestUpdates(_ context.Context, limit int) ([]sources.Record, error) {
	s.calls.Add(1)
	return make([]sources.Record, limit), nil
}

func (s *stubAdapter) Stats() integrations.AdapterStats {
	return integrations.AdapterStats{Name: s.name, RequestsMade: int64(s.calls.Load())}
}

func (s *stubAdapter) ClearCache() { s.cleared.Add(1) }

type stubTracker struct{ *stubAdapter }

func (s stubTracker) GetProcedure(_ context.Context, ref string) (sources.Record, error) {
	return sources.Record{ID: ref, Source: s.name, Kind: sources.KindProcedure}, nil
}

func newTestServer(t *testing.T, adapters ...sources.Adapter) *Server {
	t.Helper()
	o := orchestrator.New(4)
	for _, a := range adapters {
		if err := o.Register(a); err != nil {
			t.Fatal(err)
		}
	}
	return New(o, nil)
}

func do(t *testing.T, s *Server, method, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("%s %s: Content-Type = %q", method, target, ct)
	}
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode body: %v\n%s", method, target, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubAdapter{name: "a"})
	var body healthResponse
	if code := do(t, s, http.MethodGet, "/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Status != "ok" || body.Sources != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestSources(t *testing.T) {
	s := newTestServer(t, &stubAdapter{name: "b"}, stubTracker{&stubAdapter{name: "a"}})
	var body []sourceInfo
	do(t, s, http.MethodGet, "/sources", &body)
	if len(body) != 2 || body[0].Name != "a" || !body[0].TracksProcedures || body[1].TracksProcedures {
		t.Errorf("body = %+v", body)
	}
}

func TestSearch(t *testing.T) {
	a, b, c := &stubAdapter{name: "a"}, &stubAdapter{name: "b", fail: true}, &stubAdapter{name: "c"}
	s := newTestServer(t, a, b, c)

	var resp orchestrator.AggregatedResponse
	code := do(t, s, http.MethodGet, "/search?q=climate&source=a,b&limit=3", &resp)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.TotalSourcesRequested != 2 || resp.Successful != 1 || resp.Failed != 1 {
		t.Errorf("counts = %d/%d/%d", resp.TotalSourcesRequested, resp.Successful, resp.Failed)
	}
	if c.calls.Load() != 0 {
		t.Error("unrequested source was called")
	}
	if resp.Results["b"].Error != "upstream down" {
		t.Errorf("Results[b] = %+v", resp.Results["b"])
	}
}

func TestSearchBadInput(t *testing.T) {
	s := newTestServer(t, &stubAdapter{name: "a"})
	tests := []string{
		"/search",
		"/search?q=x&limit=abc",
		"/search?q=x&from=17-03-2026",
	}
	for _, target := range tests {
		var body errorBody
		if code := do(t, s, http.MethodGet, target, &body); code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", target, code)
		}
		if body.Code != "INVALID_INPUT" {
			t.Errorf("GET %s: code = %q", target, body.Code)
		}
	}
}

func TestDocument(t *testing.T) {
	a := &stubAdapter{name: "a"}
	s := newTestServer(t, a)

	var result orchestrator.SourceResult
	if code := do(t, s, http.MethodGet, "/sources/a/documents/32016R0679", &result); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !result.Success || result.Source != "a" {
		t.Errorf("result = %+v", result)
	}
}

func TestDocumentUnknownSource(t *testing.T) {
	a := &stubAdapter{name: "a"}
	s := newTestServer(t, a)

	var body errorBody
	if code := do(t, s, http.MethodGet, "/sources/nope/documents/x", &body); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if body.Code != "UNKNOWN_SOURCE" || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
	if a.calls.Load() != 0 {
		t.Error("adapter called for unknown source")
	}
}

func TestProcedure(t *testing.T) {
	s := newTestServer(t,
		stubTracker{&stubAdapter{name: sources.OEIL}},
		stubTracker{&stubAdapter{name: sources.LegislativeTrain}},
		stubTracker{&stubAdapter{name: sources.LawTracker}},
	)

	var got orchestrator.ProcedureTracking
	if code := do(t, s, http.MethodGet, "/procedures/2021%2F0106%28COD%29", &got); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if got.ProcedureReference != "2021/0106(COD)" {
		t.Errorf("ProcedureReference = %q", got.ProcedureReference)
	}
	if !got.Observatory.Success || !got.Timeline.Success || !got.Tracker.Success {
		t.Errorf("tracking = %+v", got)
	}

	var body errorBody
	if code := do(t, s, http.MethodGet, "/procedures/not-a-ref", &body); code != http.StatusBadRequest {
		t.Errorf("invalid ref: status = %d, want 400", code)
	}
}

func TestLatestStatsAndCache(t *testing.T) {
	a := &stubAdapter{name: "a"}
	s := newTestServer(t, a)

	var latest orchestrator.AggregatedResponse
	do(t, s, http.MethodGet, "/latest?limit=2", &latest)
	if n := len(latest.Results["a"].Data.([]any)); n != 2 {
		t.Errorf("latest records = %d, want 2", n)
	}

	var stats map[string]integrations.AdapterStats
	do(t, s, http.MethodGet, "/stats", &stats)
	if stats["a"].RequestsMade != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if code := do(t, s, http.MethodDelete, "/cache", nil); code != http.StatusOK {
		t.Errorf("DELETE /cache status = %d", code)
	}
	if a.cleared.Load() != 1 {
		t.Error("cache not cleared")
	}
}

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)
	var body errorBody
	if code := do(t, s, http.MethodGet, "/nope", &body); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
	if code := do(t, s, http.MethodPost, "/stats", &body); code != http.StatusMethodNotAllowed {
		t.Errorf("POST /stats status = %d, want 405", code)
	}
}

type stubArchive struct{ *stubAdapter }

func (s stubArchive) GetConsolidatedVersion(_ context.Context, celex string) (sources.Record, error) {
	if err := sources.ValidateCELEX(celex); err != nil {
		return sources.Record{}, err
	}
	return sources.Record{ID: celex, Source: s.name, Kind: sources.KindConsolidated}, nil
}

func (s stubArchive) GetAkomaNtoso(_ context.Context, celex string) (sources.Record, error) {
	return sources.Record{ID: celex, Source: s.name, Kind: sources.KindAkomaNtoso}, nil
}

func (s stubArchive) GetCommitteeMembers(_ context.Context, code string) ([]sources.Record, error) {
	return []sources.Record{{ID: "124867", Source: s.name, Kind: sources.KindMEP}}, nil
}

func TestLookupRoutes(t *testing.T) {
	s := newTestServer(t,
		stubArchive{&stubAdapter{name: sources.EURLex}},
		stubArchive{&stubAdapter{name: sources.EuropeanParliament}},
	)

	tests := []struct {
		target  string
		status  int
		success bool
		source  string
	}{
		{"/legislation/32016R0679/consolidated", http.StatusOK, true, sources.EURLex},
		{"/legislation/32016R0679/akn", http.StatusOK, true, sources.EURLex},
		{"/committees/ENVI/members", http.StatusOK, true, sources.EuropeanParliament},
		{"/legislation/GDPR/consolidated", http.StatusBadRequest, false, sources.EURLex},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var result orchestrator.SourceResult
			if code := do(t, s, http.MethodGet, tt.target, &result); code != tt.status {
				t.Fatalf("status = %d, want %d", code, tt.status)
			}
			if result.Success != tt.success || result.Source != tt.source {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestLookupRoutesUnsupported(t *testing.T) {
	s := newTestServer(t, &stubAdapter{name: sources.EURLex})

	var result orchestrator.SourceResult
	if code := do(t, s, http.MethodGet, "/legislation/32016R0679/akn", &result); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if result.Success || result.ErrorCode != "UNSUPPORTED" {
		t.Errorf("result = %+v, want UNSUPPORTED", result)
	}
}
