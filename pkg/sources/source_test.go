package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/integrations"
)

var fixedNow = time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC)

func newTestSource(t *testing.T, def Definition, handler http.HandlerFunc, opts ...Option) Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := def.ClientConfig()
	cfg.BaseURL = server.URL
	cfg.RateLimitDelay = 0
	cfg.CacheTTL = time.Minute
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithClientOptions(integrations.WithHTTPClient(server.Client())),
	}, opts...)
	return New(def, cfg, opts...)
}

func testDefinition() Definition {
	return Definition{
		Key:         "test_source",
		DisplayName: "Test Source",
		BaseURL:     "https://example.eu",
		Search: func(q string, opts SearchOptions) Endpoint {
			return Endpoint{Path: "search", Params: query("q", q)}
		},
		Document: func(id string) Endpoint {
			return Endpoint{Path: "doc/" + url.PathEscape(id)}
		},
	}
}

func TestSourceSearch(t *testing.T) {
	var gotPath, gotQuery string
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.Query().Get("q")
		w.Write([]byte("<html><head><title> Climate   results </title></head></html>"))
	})

	recs, err := src.Search(context.Background(), "climate", SearchOptions{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if gotPath != "/search" || gotQuery != "climate" {
		t.Errorf("request = %s?q=%s, want /search?q=climate", gotPath, gotQuery)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.Source != "test_source" || rec.Kind != KindSearchResults {
		t.Errorf("record = %+v", rec)
	}
	if rec.Title != "Climate results" {
		t.Errorf("Title = %q", rec.Title)
	}
	if !rec.FetchedAt.Equal(fixedNow) {
		t.Errorf("FetchedAt = %v, want %v", rec.FetchedAt, fixedNow)
	}
	if rec.Metadata["query"] != "climate" {
		t.Errorf("Metadata[query] = %v", rec.Metadata["query"])
	}
}

func TestSourceSearchRejectsEmptyQuery(t *testing.T) {
	var hits atomic.Int32
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := src.Search(context.Background(), "   ", SearchOptions{})
	if !brerrors.Is(err, brerrors.ErrCodeInvalidInput) {
		t.Errorf("Search() error = %v, want INVALID_INPUT", err)
	}
	if hits.Load() != 0 {
		t.Errorf("invalid query should not reach the network, hits = %d", hits.Load())
	}
}

func TestSourceSearchLimit(t *testing.T) {
	def := testDefinition()
	parser := ParserFunc(func(page Page) ([]Record, error) {
		recs := make([]Record, 30)
		for i := range recs {
			recs[i] = Record{ID: string(rune('a' + i%26))}
		}
		return recs, nil
	})
	src := newTestSource(t, def, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}, WithParser(parser))

	recs, _ := src.Search(context.Background(), "q", SearchOptions{})
	if len(recs) != DefaultSearchLimit {
		t.Errorf("default limit: len = %d, want %d", len(recs), DefaultSearchLimit)
	}
	recs, _ = src.Search(context.Background(), "q", SearchOptions{Limit: 5})
	if len(recs) != 5 {
		t.Errorf("limit 5: len = %d, want 5", len(recs))
	}
}

func TestSourceGetDocumentNotFound(t *testing.T) {
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := src.GetDocument(context.Background(), "missing")
	if !brerrors.Is(err, brerrors.ErrCodeNotFound) {
		t.Errorf("GetDocument() error = %v, want NOT_FOUND", err)
	}
}

func TestSourceGetDocumentEmptyPageNotFound(t *testing.T) {
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := src.GetDocument(context.Background(), "empty")
	if !brerrors.Is(err, brerrors.ErrCodeNotFound) {
		t.Errorf("GetDocument() error = %v, want NOT_FOUND", err)
	}
}

func TestSourceGetDocumentServerError(t *testing.T) {
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := src.GetDocument(context.Background(), "doc1")
	if !brerrors.Is(err, brerrors.ErrCodeHTTPStatus) {
		t.Errorf("GetDocument() error = %v, want HTTP_STATUS", err)
	}
}

func TestSourceGetDocumentRejectsTraversal(t *testing.T) {
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid id should not reach the network")
	})
	for _, id := range []string{"", "../etc/passwd", "a?b", "a#b"} {
		if _, err := src.GetDocument(context.Background(), id); !brerrors.Is(err, brerrors.ErrCodeInvalidInput) {
			t.Errorf("GetDocument(%q) error = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestSourceGetLatestUpdates(t *testing.T) {
	def := testDefinition()
	def.Latest = func(time.Time, int) Endpoint { return Endpoint{Path: "latest"} }

	day := func(d int) *time.Time {
		ts := time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	parser := ParserFunc(func(page Page) ([]Record, error) {
		return []Record{
			{ID: "undated"},
			{ID: "old", Published: day(1)},
			{ID: "new", Published: day(15)},
			{ID: "mid", Published: day(8)},
		}, nil
	})
	src := newTestSource(t, def, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}, WithParser(parser))

	recs, err := src.GetLatestUpdates(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetLatestUpdates() error: %v", err)
	}
	want := []string{"new", "mid", "old"}
	if len(recs) != len(want) {
		t.Fatalf("len = %d, want %d", len(recs), len(want))
	}
	for i, id := range want {
		if recs[i].ID != id {
			t.Errorf("recs[%d] = %s, want %s", i, recs[i].ID, id)
		}
	}
}

func TestSourceGetLatestUpdatesUnsupported(t *testing.T) {
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		t.Error("source without latest endpoint should not fetch")
	})
	recs, err := src.GetLatestUpdates(context.Background(), 5)
	if err != nil || recs == nil || len(recs) != 0 {
		t.Errorf("GetLatestUpdates() = %v, %v; want empty, nil", recs, err)
	}
}

func TestTrackingSource(t *testing.T) {
	def := testDefinition()
	def.Procedure = func(ref string) Endpoint {
		return Endpoint{Path: "procedure", Params: query("reference", ref)}
	}
	var gotRef string
	src := newTestSource(t, def, func(w http.ResponseWriter, r *http.Request) {
		gotRef = r.URL.Query().Get("reference")
		w.Write([]byte("<title>Artificial Intelligence Act</title>"))
	})

	tracker, ok := src.(ProcedureTracker)
	if !ok {
		t.Fatal("source with a procedure endpoint should implement ProcedureTracker")
	}
	rec, err := tracker.GetProcedure(context.Background(), "2021/0106(COD)")
	if err != nil {
		t.Fatalf("GetProcedure() error: %v", err)
	}
	if gotRef != "2021/0106(COD)" {
		t.Errorf("reference param = %q", gotRef)
	}
	if rec.ID != "2021/0106(COD)" || rec.Kind != KindProcedure {
		t.Errorf("record = %+v", rec)
	}

	if _, err := tracker.GetProcedure(context.Background(), "not-a-ref"); !brerrors.Is(err, brerrors.ErrCodeInvalidInput) {
		t.Errorf("GetProcedure(bad) error = %v, want INVALID_INPUT", err)
	}
}

func TestPlainSourceIsNotTracker(t *testing.T) {
	src := New(testDefinition(), testDefinition().ClientConfig())
	if _, ok := src.(ProcedureTracker); ok {
		t.Error("source without a procedure endpoint should not implement ProcedureTracker")
	}
}

func TestSourceStatsAndClearCache(t *testing.T) {
	var hits atomic.Int32
	src := newTestSource(t, testDefinition(), func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("x"))
	})
	ctx := context.Background()

	_, _ = src.Search(ctx, "q", SearchOptions{})
	_, _ = src.Search(ctx, "q", SearchOptions{})
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
	stats := src.Stats()
	if stats.Name != "Test Source" || stats.CacheHits != 1 || stats.RequestsMade != 1 {
		t.Errorf("stats = %+v", stats)
	}

	src.ClearCache()
	_, _ = src.Search(ctx, "q", SearchOptions{})
	if hits.Load() != 2 {
		t.Errorf("after ClearCache hits = %d, want 2", hits.Load())
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct{ base, path, want string }{
		{"https://oeil.secure.europarl.europa.eu/oeil/en", "procedure-file", "https://oeil.secure.europarl.europa.eu/oeil/en/procedure-file"},
		{"https://style-guide.europa.eu/en/", "/search", "https://style-guide.europa.eu/en/search"},
		{"https://example.eu", "", "https://example.eu"},
		{"https://example.eu", "https://other.eu/x", "https://other.eu/x"},
	}
	for _, tt := range tests {
		if got := joinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}
