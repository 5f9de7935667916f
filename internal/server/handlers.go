package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/victorsole/brubru/pkg/buildinfo"
	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/orchestrator"
	"github.com/victorsole/brubru/pkg/sources"
)

type healthResponse struct {
	Status  string         `json:"status"`
	Build   buildinfo.Info `json:"build"`
	Sources int            `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Build:   buildinfo.Current(),
		Sources: len(s.orch.Sources()),
	})
}

type sourceInfo struct {
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	TracksProcedures bool   `json:"tracks_procedures"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	names := s.orch.Sources()
	out := make([]sourceInfo, 0, len(names))
	for _, name := range names {
		a, ok := s.orch.Adapter(name)
		if !ok {
			continue
		}
		_, tracks := a.(sources.ProcedureTracker)
		out = append(out, sourceInfo{Name: name, DisplayName: a.DisplayName(), TracksProcedures: tracks})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if err := brerrors.ValidateQuery(query); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts, err := searchOptions(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp := s.orch.SearchAll(r.Context(), query, splitList(q["source"]), opts)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	source, err := pathParam(r, "source")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.orch.GetDocumentFromSource(r.Context(), source, id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.orch.GetLatestUpdatesAll(r.Context(), limit))
}

func (s *Server) handleProcedure(w http.ResponseWriter, r *http.Request) {
	ref, err := pathParam(r, "ref")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := sources.ValidateProcedureReference(ref); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.orch.TrackProcedure(r.Context(), ref))
}

// handleLookup serves a single-source lookup keyed by the route parameter
// param. Invalid input is a 400; every other outcome is the source result.
func (s *Server) handleLookup(param string, lookup func(context.Context, string) orchestrator.SourceResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := pathParam(r, param)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		result := lookup(r.Context(), v)
		if result.ErrorCode == string(brerrors.ErrCodeInvalidInput) {
			writeJSON(w, http.StatusBadRequest, result)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orch.AllStats())
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearAllCaches()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": len(s.orch.Sources())})
}

// pathParam returns the unescaped value of a route parameter.
func pathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", brerrors.Wrap(brerrors.ErrCodeInvalidInput, err, "invalid %s %q", name, raw)
	}
	return v, nil
}

func intParam(q url.Values, name string) (int, error) {
	s := q.Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, brerrors.New(brerrors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, s)
	}
	return n, nil
}

func dateParam(q url.Values, name string) (time.Time, error) {
	s := q.Get(name)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, brerrors.New(brerrors.ErrCodeInvalidInput, "%s must be YYYY-MM-DD, got %q", name, s)
	}
	return t, nil
}

func searchOptions(q url.Values) (sources.SearchOptions, error) {
	var opts sources.SearchOptions
	var err error
	if opts.Limit, err = intParam(q, "limit"); err != nil {
		return opts, err
	}
	if opts.DateFrom, err = dateParam(q, "from"); err != nil {
		return opts, err
	}
	if opts.DateTo, err = dateParam(q, "to"); err != nil {
		return opts, err
	}
	opts.DocumentType = q.Get("type")
	opts.Author = q.Get("author")
	opts.Country = q.Get("country")
	return opts, nil
}

// splitList flattens repeated and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
