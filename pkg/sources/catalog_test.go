package sources

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	brerrors "github.com/victorsole/brubru/pkg/errors"
)

func TestCatalog(t *testing.T) {
	want := []string{
		AssistEU, Council, EURLex, EuropeanCommission, EuropeanParliament, IATE, JRC,
		LawTracker, LegislativeTrain, OEIL, StyleGuide, ThinkTank, WhoIsWho,
	}
	keys := Keys()
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %d sources", keys, len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	for _, def := range Catalog() {
		t.Run(def.Key, func(t *testing.T) {
			if err := brerrors.ValidateSourceName(def.Key); err != nil {
				t.Errorf("invalid key: %v", err)
			}
			if def.DisplayName == "" || def.BaseURL == "" {
				t.Error("display name and base URL are required")
			}
			if def.Search == nil || def.Document == nil {
				t.Error("Search and Document endpoints are required")
			}
			if !strings.HasPrefix(def.BaseURL, "https://") {
				t.Errorf("BaseURL = %q, want https", def.BaseURL)
			}
		})
	}
}

func TestCatalogProcedureTrackers(t *testing.T) {
	trackers := map[string]bool{OEIL: true, LegislativeTrain: true, LawTracker: true}
	for _, def := range Catalog() {
		if def.TracksProcedures() != trackers[def.Key] {
			t.Errorf("%s: TracksProcedures() = %v, want %v", def.Key, def.TracksProcedures(), trackers[def.Key])
		}
	}
}

func TestCatalogRateLimits(t *testing.T) {
	tests := map[string]time.Duration{
		EuropeanParliament: 2 * time.Second,
		EURLex:             1500 * time.Millisecond,
		IATE:               time.Second,
	}
	for key, want := range tests {
		def, ok := Lookup(key)
		if !ok {
			t.Fatalf("Lookup(%q) not found", key)
		}
		if got := def.ClientConfig().RateLimitDelay; got != want {
			t.Errorf("%s delay = %v, want %v", key, got, want)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
}

func TestEURLexSearchParams(t *testing.T) {
	def, _ := Lookup(EURLex)
	var got map[string]string
	src := newTestSource(t, def, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.html" {
			t.Errorf("path = %s, want /search.html", r.URL.Path)
		}
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte("results"))
	})

	_, err := src.Search(context.Background(), "artificial intelligence", SearchOptions{
		DocumentType: "regulation",
		DateFrom:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Author:       "COM",
	})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	want := map[string]string{
		"text":     "artificial intelligence",
		"qid":      "1",
		"type":     "quick",
		"lang":     "en",
		"FM_CODED": "REGULATION",
		"DD_FROM":  "20240101",
		"DD_TO":    "20241231",
		"AUTHOR":   "COM",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("param %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestEURLexLatestUpdatesFromFirstOfMonth(t *testing.T) {
	def, _ := Lookup(EURLex)
	var text, from string
	src := newTestSource(t, def, func(w http.ResponseWriter, r *http.Request) {
		text, from = r.URL.Query().Get("text"), r.URL.Query().Get("DD_FROM")
		w.Write([]byte("results"))
	})

	if _, err := src.GetLatestUpdates(context.Background(), 5); err != nil {
		t.Fatalf("GetLatestUpdates() error: %v", err)
	}
	if text != "*" || from != "20260301" {
		t.Errorf("text = %q, DD_FROM = %q; want *, 20260301", text, from)
	}
}

func TestEURLexGetDocument(t *testing.T) {
	def, _ := Lookup(EURLex)
	var uri string
	src := newTestSource(t, def, func(w http.ResponseWriter, r *http.Request) {
		uri = r.URL.Query().Get("uri")
		w.Write([]byte("<title>GDPR</title>"))
	})

	rec, err := src.GetDocument(context.Background(), "32016R0679")
	if err != nil {
		t.Fatalf("GetDocument() error: %v", err)
	}
	if uri != "CELEX:32016R0679" {
		t.Errorf("uri = %q", uri)
	}
	if rec.Kind != DocRegulation {
		t.Errorf("Kind = %q, want regulation", rec.Kind)
	}
	for _, k := range []string{"celex_number", "html_url", "pdf_url", "xml_url"} {
		if rec.Metadata[k] == nil {
			t.Errorf("Metadata[%s] missing", k)
		}
	}

	if _, err := src.GetDocument(context.Background(), "GDPR"); !brerrors.Is(err, brerrors.ErrCodeInvalidInput) {
		t.Errorf("GetDocument(GDPR) error = %v, want INVALID_INPUT", err)
	}
}
