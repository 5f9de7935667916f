// Package server exposes the orchestrator over a small JSON HTTP API.
//
// Routes:
//
//	GET    /health
//	GET    /sources
//	GET    /search?q=&source=&limit=&type=&from=&to=&author=
//	GET    /sources/{source}/documents/{id}
//	GET    /latest?limit=
//	GET    /procedures/{ref}
//	GET    /legislation/{celex}/consolidated
//	GET    /legislation/{celex}/akn
//	GET    /committees/{code}/members
//	GET    /stats
//	DELETE /cache
//
// Path parameters may be URL-escaped; procedure references contain a slash
// and must be sent as %2F.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	brerrors "github.com/victorsole/brubru/pkg/errors"
	"github.com/victorsole/brubru/pkg/orchestrator"
)

// DefaultAddr is the listen address of [Server.ListenAndServe] when none is set.
const DefaultAddr = ":8080"

const shutdownTimeout = 5 * time.Second

// Server serves the orchestrator's operations as JSON.
type Server struct {
	orch   *orchestrator.Orchestrator
	logger *log.Logger
	router chi.Router
}

// New creates a Server for orch. A nil logger discards output.
func New(orch *orchestrator.Orchestrator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{orch: orch, logger: logger.WithPrefix("server")}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/sources", s.handleSources)
	r.Get("/sources/{source}/documents/{id}", s.handleDocument)
	r.Get("/search", s.handleSearch)
	r.Get("/latest", s.handleLatest)
	r.Get("/procedures/{ref}", s.handleProcedure)
	r.Get("/legislation/{celex}/consolidated", s.handleLookup("celex", s.orch.GetConsolidatedVersion))
	r.Get("/legislation/{celex}/akn", s.handleLookup("celex", s.orch.GetAkomaNtoso))
	r.Get("/committees/{code}/members", s.handleLookup("code", s.orch.GetCommitteeMembers))
	r.Get("/stats", s.handleStats)
	r.Delete("/cache", s.handleClearCache)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, brerrors.New(brerrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, brerrors.New(brerrors.ErrCodeUnsupported, "method %s not allowed", r.Method))
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "sources", len(s.orch.Sources()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: brerrors.UserMessage(err), Code: string(brerrors.GetCode(err))})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch brerrors.GetCode(err) {
	case brerrors.ErrCodeUnknownSource, brerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case brerrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case brerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
