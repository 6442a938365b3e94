package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/cinedex/internal/api/handlers"
	"github.com/amaumene/cinedex/internal/api/middleware"
	"github.com/amaumene/cinedex/internal/collections"
	"github.com/amaumene/cinedex/internal/config"
	"github.com/amaumene/cinedex/internal/downloads"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/amaumene/cinedex/internal/services/tmdb"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP gateway server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, tmdbClient *tmdb.Client, store *collections.Store, manager *downloads.Manager, logger *logrus.Logger) (*Server, error) {
	s := &Server{logger: logger}

	mux := http.NewServeMux()
	if err := s.setupRoutes(mux, cfg, db, tmdbClient, store, manager); err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // archive pass-through bodies can be large
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config, db *models.Database, tmdbClient *tmdb.Client, store *collections.Store, manager *downloads.Manager) error {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status summary
	statusHandler := handlers.NewStatusHandler(store, manager, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Catalog pass-through
	tmdbProxy, err := handlers.NewProxyHandler(handlers.ProxyConfig{
		Prefix:   "/api/tmdb",
		Upstream: cfg.TMDBBaseURL,
		Timeout:  cfg.CatalogTimeout,
		Query:    map[string]string{"api_key": cfg.TMDBAPIKey},
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create tmdb proxy: %w", err)
	}
	mux.Handle("/api/tmdb/", tmdbProxy)

	// Archive pass-through (slow upstream, longer budget)
	archiveProxy, err := handlers.NewProxyHandler(handlers.ProxyConfig{
		Prefix:   "/api/archive",
		Upstream: cfg.ArchiveBaseURL,
		Timeout:  cfg.ArchiveTimeout,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create archive proxy: %w", err)
	}
	mux.Handle("/api/archive/", archiveProxy)

	// Merged genre taxonomy, served from the persisted cache
	genresHandler := handlers.NewGenresHandler(db, tmdbClient, s.logger)
	mux.HandleFunc("/api/genres", genresHandler.ServeHTTP)

	// User collections
	collectionsHandler := handlers.NewCollectionsHandler(store, s.logger)
	mux.Handle("/api/collections/", collectionsHandler)

	// Downloads
	downloadsHandler := handlers.NewDownloadsHandler(manager, s.logger)
	mux.Handle("/api/downloads", downloadsHandler)
	mux.Handle("/api/downloads/", downloadsHandler)

	return nil
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
