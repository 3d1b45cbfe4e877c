// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/fabricshift/fabricshift/internal/history"
	"github.com/fabricshift/fabricshift/pkg/convert"
	"github.com/fabricshift/fabricshift/pkg/mapping"
)

// Server serves the conversion API.
type Server struct {
	converter *convert.Converter
	table     *mapping.Table
	store     *history.Store
	port      int
	logger    *slog.Logger
}

// Config holds configuration for the API server. Store is optional; without
// one, conversions are not persisted and the history endpoint returns 404.
type Config struct {
	Converter *convert.Converter
	Table     *mapping.Table
	Store     *history.Store
	Port      int
	Logger    *slog.Logger
}

// NewServer creates an API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		converter: cfg.Converter,
		table:     cfg.Table,
		store:     cfg.Store,
		port:      cfg.Port,
		logger:    logger,
	}
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Get("/mappings", s.handleMappings)
		if s.store != nil {
			r.Get("/history", s.handleHistory)
			r.Get("/history/{id}", s.handleHistoryGet)
		}
	})
	return r
}
