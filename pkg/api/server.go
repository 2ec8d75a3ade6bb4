// Package api serves the discograph pipeline over HTTP.
//
// # Endpoints
//
// Analysis endpoints take an annotated document as the request body (JSON
// by default; send Content-Type application/yaml or application/toml for
// the other formats) and read options from the query string: sloppy=true,
// unresolved=keep|drop, detailed=true, stripped=true.
//
//	GET    /healthz
//	POST   /v1/heads            CDU heads and headless CDUs
//	POST   /v1/order            canonical order of units
//	POST   /v1/strip            the document with CDUs eliminated
//	POST   /v1/render?format=   DOT, SVG or PNG drawing
//	POST   /v1/check            annotation problems
//	POST   /v1/documents        analyze and archive
//	GET    /v1/documents        list archived runs (?doc=, ?limit=)
//	GET    /v1/documents/{id}   one archived run
//	DELETE /v1/documents/{id}
//
// Errors are JSON objects with a machine-readable code; the status code is
// derived from it with [errors.HTTPStatus].
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/discograph/pkg/pipeline"
	"github.com/matzehuels/discograph/pkg/storage"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 16 << 20

// Option configures a Server.
type Option func(*Server)

// WithStore sets the archive behind /v1/documents. Without one the
// archive endpoints answer 501.
func WithStore(st storage.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxBodyBytes caps request bodies at n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// Server holds the chi router and the pipeline it serves.
type Server struct {
	router  chi.Router
	runner  *pipeline.Runner
	store   storage.Store
	logger  *log.Logger
	maxBody int64
}

// New creates a Server with all routes configured.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{runner: runner, maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/heads", s.handleHeads)
		r.Post("/order", s.handleOrder)
		r.Post("/strip", s.handleStrip)
		r.Post("/render", s.handleRender)
		r.Post("/check", s.handleCheck)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handleArchive)
			r.Get("/", s.handleListRecords)
			r.Get("/{id}", s.handleGetRecord)
			r.Delete("/{id}", s.handleDeleteRecord)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
