// Package api exposes identification, tuning, simulation and comparison
// over HTTP with JSON bodies.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/pipeline"
)

// maxBody bounds request bodies; curves of a few hundred thousand samples
// fit comfortably.
const maxBody = 32 << 20

type Server struct {
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	log     *slog.Logger
	metrics *Metrics
	http    *http.Server
}

func NewServer(cfg *config.Config, p *pipeline.Pipeline, log *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		pipe:    p,
		log:     log,
		metrics: NewMetrics(),
	}
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router registers every route, each wrapped with request metrics.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	route := func(path, method string, h http.HandlerFunc) {
		r.Handle(path, s.metrics.Wrap(path, h)).Methods(method)
	}
	route("/health", http.MethodGet, s.health)
	route("/identify", http.MethodPost, s.identify)
	route("/tune", http.MethodPost, s.tune)
	route("/simulate", http.MethodPost, s.simulate)
	route("/metrics", http.MethodPost, s.measure)
	route("/compare", http.MethodPost, s.compare)
	route("/run", http.MethodPost, s.run)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return r
}

// Handler is the router behind an access log.
func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(slogWriter{s.log}, s.Router())
}

// Start serves until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.log.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("http server stopping")
	return s.http.Shutdown(ctx)
}

// slogWriter feeds access log lines to the structured logger.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	w.log.Info("access", "line", string(p))
	return n, nil
}
