// Package server exposes the overlay job orchestrator over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/overlayd/overlayd/internal/processor"
)

// Fetcher retrieves a remote source video into local temporary storage and
// returns its path. The returned file is owned by the caller.
type Fetcher interface {
	Download(ctx context.Context, url string) (string, error)
}

// Processor runs one overlay job to completion. Implementations delete the
// job's input file on every path and leave no partial output on failure.
type Processor interface {
	Process(ctx context.Context, job processor.Job) error
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type Config struct {
	Host      string
	Port      int
	Fetcher   Fetcher
	Processor Processor
	Logger    *slog.Logger
	StartTime time.Time
}

func New(cfg Config) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:     router,
			ReadTimeout: 30 * time.Second,
			// Jobs stream their result back when done; no write deadline.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
