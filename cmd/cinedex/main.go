package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/cinedex/internal/api"
	"github.com/amaumene/cinedex/internal/collections"
	"github.com/amaumene/cinedex/internal/config"
	"github.com/amaumene/cinedex/internal/downloads"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/amaumene/cinedex/internal/scheduler"
	"github.com/amaumene/cinedex/internal/services/archive"
	"github.com/amaumene/cinedex/internal/services/tmdb"
	"github.com/amaumene/cinedex/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting Cinedex")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	tmdbClient, err := tmdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog client: %w", err)
	}
	logger.Info("Catalog client initialized")

	archiveClient, err := archive.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize archive client: %w", err)
	}
	logger.Info("Archive client initialized")

	// 5. Initialize collection store and download manager
	store := collections.NewStore(db, logger)

	saver, err := downloads.NewFileSaver(cfg.DownloadDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize download saver: %w", err)
	}

	manager, err := downloads.NewManager(db, archiveClient, saver, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize download manager: %w", err)
	}
	logger.Info("Download manager initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(db, tmdbClient, manager, cfg.DownloadRetentionDays, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server, err := api.NewServer(cfg, db, tmdbClient, store, manager, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Cinedex is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Cinedex stopped")
	return nil
}
