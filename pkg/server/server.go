// Package server exposes the pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz    liveness probe, answers "ok"
//	POST /v1/solve   runs the pipeline on posted graphs and returns the report
//
// A solve request carries the graph documents inline:
//
//	{
//	  "graphs": [{"name": "g1", "format": "dot", "content": "digraph { ... }"}],
//	  "options": {"mode": "separate", "order": "ascending", "exhaustive": false}
//	}
//
// Input errors are answered with 400 and a {"code", "message"} body.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/equalpath/pkg/errors"
	"github.com/matzehuels/equalpath/pkg/observability"
	"github.com/matzehuels/equalpath/pkg/pipeline"
)

const (
	// DefaultSolveTimeout bounds a single solve request.
	DefaultSolveTimeout = 60 * time.Second

	// MaxBodyBytes bounds the size of a request body.
	MaxBodyBytes = 4 << 20
)

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	timeout time.Duration
	ttl     time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithSolveTimeout sets the per-request solve timeout.
func WithSolveTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithCacheTTL sets the expiry of reports cached by the server.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Server) { s.ttl = d }
}

// New returns a server that executes requests with runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		logger:  logger,
		timeout: DefaultSolveTimeout,
		ttl:     pipeline.DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequestSize(MaxBodyBytes))
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/solve", s.handleSolve)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// solveRequest is the body of POST /v1/solve.
type solveRequest struct {
	Graphs  []pipeline.Input `json:"graphs"`
	Options pipeline.Options `json:"options"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts := req.Options
	opts.CacheTTL = s.ttl
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, req.Graphs, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := errs.GetCode(err)
	switch {
	case errs.IsInputError(err):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, errs.ErrCodeSolver
	}
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// observe reports requests to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		d := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
