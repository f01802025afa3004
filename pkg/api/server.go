// Package api is the HTTP surface over the embedder engine: the thin
// "experiment harness" collaborator named out of scope by the core
// (spec.md §1). It carries no embedding logic of its own — only job
// submission, polling, and a health check — and is built from the
// teacher's ServerConfig/middleware harness, repurposed from road
// routing to embedding jobs.
package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig configures the HTTP surface. All fields have defaults
// via DefaultConfig.
type ServerConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	RequestTimeout time.Duration
	MaxConcurrent int
	CORSOrigin    string
}

// DefaultConfig returns reasonable defaults for local development.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Addr:           ":8080",
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		RequestTimeout: 25 * time.Second,
		MaxConcurrent:  64,
		CORSOrigin:     "*",
	}
}

// Server wires the job manager to an HTTP mux through the middleware
// stack.
type Server struct {
	cfg     ServerConfig
	log     zerolog.Logger
	jobs    *JobManager
	httpSrv *http.Server
	sem     chan struct{}
}

// NewServer builds a Server ready to ListenAndServe.
func NewServer(cfg ServerConfig, jobs *JobManager, log zerolog.Logger) *Server {
	s := &Server{
		cfg:  cfg,
		log:  log,
		jobs: jobs,
		sem:  make(chan struct{}, cfg.MaxConcurrent),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/jobs", s.handleSubmitJob)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("GET /api/v1/jobs/{id}/positions", s.handleJobPositions)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe() error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		s.log.Info().Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

// withMiddleware applies security headers, CORS, a concurrency
// limiter, panic recovery, a per-request timeout, and access logging,
// in that order around next.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	h := next
	h = s.withAccessLog(h)
	h = http.TimeoutHandler(h, s.cfg.RequestTimeout, "request timeout")
	h = s.withRecover(h)
	h = s.withConcurrencyLimit(h)
	h = s.withCORS(h)
	h = withSecurityHeaders(h)
	return h
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withConcurrencyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.sem <- struct{}{}:
			defer func() { <-s.sem }()
			next.ServeHTTP(w, r)
		default:
			http.Error(w, "server busy", http.StatusServiceUnavailable)
		}
	})
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("recovered from panic")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
