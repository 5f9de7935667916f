package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/victorsole/brubru/internal/server"
	"github.com/victorsole/brubru/pkg/config"
	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/integrations"
	"github.com/victorsole/brubru/pkg/orchestrator"
	"github.com/victorsole/brubru/pkg/sources"
)

type stubSource struct {
	name    string
	err     error
	cleared int
}

func (s *stubSource) Name() string        { return s.name }
func (s *stubSource) DisplayName() string { return strings.ToUpper(s.name) }

func (s *stubSource) Search(_ context.Context, q string, _ sources.SearchOptions) ([]sources.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []sources.Record{{ID: "1", Title: "Result for " + q, URL: "https://example.eu/1"}}, nil
}

func (s *stubSource) GetDocument(_ context.Context, id string) (sources.Record, error) {
	if s.err != nil {
		return sources.Record{}, s.err
	}
	return sources.Record{ID: id, Title: "Document " + id}, nil
}

func (s *stubSource) GetLatestUpdates(_ context.Context, limit int) ([]sources.Record, error) {
	return make([]sources.Record, limit), s.err
}

func (s *stubSource) Stats() integrations.AdapterStats {
	return integrations.AdapterStats{Name: s.name, BaseURL: "https://" + s.name + ".eu", RequestsMade: 2}
}

func (s *stubSource) ClearCache() { s.cleared++ }

type testCLI struct {
	*CLI
	out *bytes.Buffer
	cfg *config.Config
}

func newTestCLI(t *testing.T, adapters ...sources.Adapter) *testCLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tc := &testCLI{CLI: New(io.Discard, LogInfo), out: &bytes.Buffer{}}
	tc.CLI.out = tc.out
	tc.errOut = io.Discard
	tc.build = func(cfg *config.Config, _ *log.Logger) (*orchestrator.Orchestrator, error) {
		tc.cfg = cfg
		o := orchestrator.New(cfg.MaxConcurrent)
		for _, a := range adapters {
			if err := o.Register(a); err != nil {
				return nil, err
			}
		}
		return o, nil
	}
	return tc
}

func (tc *testCLI) run(args ...string) error {
	root := tc.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestSearchJSON(t *testing.T) {
	tc := newTestCLI(t,
		&stubSource{name: "a"},
		&stubSource{name: "b", err: errors.New("boom")},
		&stubSource{name: "c"},
	)

	if err := tc.run("search", "--json", "climate", "change"); err != nil {
		t.Fatalf("search error: %v", err)
	}
	var resp orchestrator.AggregatedResponse
	if err := json.Unmarshal(tc.out.Bytes(), &resp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, tc.out.String())
	}
	if resp.Query != "climate change" || resp.Successful != 2 || resp.Failed != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Results["b"].Error != "boom" {
		t.Errorf("Results[b].Error = %q", resp.Results["b"].Error)
	}
}

func TestSearchHuman(t *testing.T) {
	tc := newTestCLI(t, &stubSource{name: "a"}, &stubSource{name: "b", err: errors.New("boom")})

	if err := tc.run("search", "--source", "a,b", "climate"); err != nil {
		t.Fatalf("search error: %v", err)
	}
	out := tc.out.String()
	for _, want := range []string{"Result for climate", "https://example.eu/1", "boom", "1/2 sources"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSearchRejectsBadFlags(t *testing.T) {
	tc := newTestCLI(t, &stubSource{name: "a"})

	tests := [][]string{
		{"search", "--from", "2024/01/01", "q"},
		{"search", "--limit", "-1", "q"},
		{"search", " "},
	}
	for _, args := range tests {
		if err := tc.run(args...); !brerrors.Is(err, brerrors.ErrCodeInvalidInput) {
			t.Errorf("%v: error = %v, want INVALID_INPUT", args, err)
		}
	}
}

func TestDocument(t *testing.T) {
	tc := newTestCLI(t, &stubSource{name: "a"}, &stubSource{name: "bad", err: errors.New("gone")})

	if err := tc.run("document", "a", "42"); err != nil {
		t.Fatalf("document error: %v", err)
	}
	if !strings.Contains(tc.out.String(), "Document 42") {
		t.Errorf("output = %q", tc.out.String())
	}

	if err := tc.run("document", "nope", "42"); !brerrors.Is(err, brerrors.ErrCodeUnknownSource) {
		t.Errorf("unknown source error = %v", err)
	}
	if err := tc.run("document", "bad", "42"); !errors.Is(err, errSourceFailed) {
		t.Errorf("failing source error = %v", err)
	}
}

func TestTrackRejectsInvalidReference(t *testing.T) {
	tc := newTestCLI(t)
	if err := tc.run("track", "2021-0106"); !brerrors.Is(err, brerrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLatestJSON(t *testing.T) {
	tc := newTestCLI(t, &stubSource{name: "a"})

	if err := tc.run("latest", "--json", "-n", "3"); err != nil {
		t.Fatal(err)
	}
	var resp orchestrator.AggregatedResponse
	if err := json.Unmarshal(tc.out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Args.Limit != 3 || resp.Operation != orchestrator.OpGetLatestUpdates {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSourcesCommand(t *testing.T) {
	tc := newTestCLI(t, &stubSource{name: "a"})

	if err := tc.run("sources", "--json"); err != nil {
		t.Fatal(err)
	}
	var rows []sourceRow
	if err := json.Unmarshal(tc.out.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].DisplayName != "A" || rows[0].BaseURL != "https://a.eu" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestMaxConcurrentAndConfigFlags(t *testing.T) {
	tc := newTestCLI(t)

	path := filepath.Join(t.TempDir(), "brubru.toml")
	if err := os.WriteFile(path, []byte("max_concurrent = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := tc.run("sources", "--config", path); err != nil {
		t.Fatal(err)
	}
	if tc.cfg.MaxConcurrent != 7 {
		t.Errorf("MaxConcurrent from file = %d, want 7", tc.cfg.MaxConcurrent)
	}

	if err := tc.run("sources", "--config", path, "--max-concurrent", "2"); err != nil {
		t.Fatal(err)
	}
	if tc.cfg.MaxConcurrent != 2 {
		t.Errorf("MaxConcurrent with flag = %d, want 2", tc.cfg.MaxConcurrent)
	}

	if err := tc.run("sources", "--config", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestRemoteAdminCommands(t *testing.T) {
	a := &stubSource{name: "a"}
	o := orchestrator.New(2)
	if err := o.Register(a); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(server.New(o, nil))
	t.Cleanup(srv.Close)

	tc := newTestCLI(t)
	if err := tc.run("cache", "clear", "--server", srv.URL); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if a.cleared != 1 {
		t.Errorf("cleared = %d, want 1", a.cleared)
	}
	if !strings.Contains(tc.out.String(), "Cleared caches of 1 sources") {
		t.Errorf("output = %q", tc.out.String())
	}

	tc.out.Reset()
	if err := tc.run("stats", "--json", "--server", srv.URL); err != nil {
		t.Fatalf("stats error: %v", err)
	}
	var stats map[string]integrations.AdapterStats
	if err := json.Unmarshal(tc.out.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats["a"].RequestsMade != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

type stubArchive struct {
	*stubSource
	akn string
}

func (s stubArchive) GetConsolidatedVersion(_ context.Context, celex string) (sources.Record, error) {
	rec := sources.Record{ID: celex, Source: s.name, URL: "https://eur-lex.europa.eu/x"}
	rec.SetMeta("available", true)
	rec.SetMeta("consolidated_celex", "0"+celex[1:])
	return rec, nil
}

func (s stubArchive) GetAkomaNtoso(_ context.Context, celex string) (sources.Record, error) {
	rec := sources.Record{ID: celex, Source: s.name, Content: s.akn}
	rec.SetMeta("available", s.akn != "")
	return rec, nil
}

func (s stubArchive) GetCommitteeMembers(_ context.Context, code string) ([]sources.Record, error) {
	return []sources.Record{{ID: "124867", Title: "MEP of " + code}}, nil
}

func TestLegislationCommands(t *testing.T) {
	const akn = "<akomaNtoso/>"
	tc := newTestCLI(t,
		stubArchive{stubSource: &stubSource{name: sources.EURLex}, akn: akn},
		stubArchive{stubSource: &stubSource{name: sources.EuropeanParliament}},
	)

	if err := tc.run("consolidated", "32016R0679"); err != nil {
		t.Fatalf("consolidated error: %v", err)
	}
	if !strings.Contains(tc.out.String(), "02016R0679") {
		t.Errorf("consolidated output = %q", tc.out.String())
	}

	tc.out.Reset()
	if err := tc.run("committee", "ENVI"); err != nil {
		t.Fatalf("committee error: %v", err)
	}
	if !strings.Contains(tc.out.String(), "MEP of ENVI") {
		t.Errorf("committee output = %q", tc.out.String())
	}

	file := filepath.Join(t.TempDir(), "act.xml")
	if err := tc.run("akn", "32016R0679", "-o", file); err != nil {
		t.Fatalf("akn error: %v", err)
	}
	got, err := os.ReadFile(file)
	if err != nil || string(got) != akn {
		t.Errorf("akn file = %q, %v", got, err)
	}
}

func TestLegislationCommandsUnsupported(t *testing.T) {
	tc := newTestCLI(t, &stubSource{name: sources.EURLex})

	if err := tc.run("akn", "32016R0679"); !errors.Is(err, errSourceFailed) {
		t.Errorf("akn error = %v, want errSourceFailed", err)
	}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__brubru_"},
		{"zsh", "#compdef brubru"},
		{"fish", "complete -c brubru"},
		{"powershell", "Register-ArgumentCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			tc := newTestCLI(t)
			if err := tc.run("completion", tt.shell); err != nil {
				t.Fatalf("completion %s error: %v", tt.shell, err)
			}
			if !strings.Contains(tc.out.String(), tt.want) {
				t.Errorf("completion %s output missing %q", tt.shell, tt.want)
			}
		})
	}

	tc := newTestCLI(t)
	if err := tc.run("completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestSourceFlagCompletion(t *testing.T) {
	tc := newTestCLI(t)
	root := tc.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{cobra.ShellCompRequestCmd, "search", "--source", "eur"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion request error: %v", err)
	}
	if !strings.Contains(out.String(), sources.EURLex) {
		t.Errorf("completions = %q, want %s", out.String(), sources.EURLex)
	}
}
