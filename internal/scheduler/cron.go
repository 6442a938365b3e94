package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/cinedex/internal/catalog"
	"github.com/amaumene/cinedex/internal/downloads"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/amaumene/cinedex/internal/services/tmdb"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron          *cron.Cron
	db            *models.Database
	tmdbClient    *tmdb.Client
	manager       *downloads.Manager
	retentionDays int
	logger        *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(db *models.Database, tmdbClient *tmdb.Client, manager *downloads.Manager, retentionDays int, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		tmdbClient:    tmdbClient,
		manager:       manager,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every hour: refresh the cached merged genre taxonomy
	_, err := s.cron.AddFunc("0 * * * *", func() {
		s.runGenreRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add genre refresh job: %w", err)
	}

	// Every day at 04:00: prune finished download records past retention
	_, err = s.cron.AddFunc("0 4 * * *", func() {
		s.runDownloadPrune()
	})
	if err != nil {
		return fmt.Errorf("failed to add download prune job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Warm the genre cache immediately so the first genre request does not
	// depend on the upstream being up
	go s.runGenreRefresh()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runGenreRefresh fetches both genre taxonomies, merges them, and persists
// the result. A failure keeps the previous cache in place.
func (s *Scheduler) runGenreRefresh() {
	s.logger.Info("Running scheduled genre refresh")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	movieGenres, err := s.tmdbClient.MovieGenres(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Genre refresh failed fetching movie genres")
		return
	}

	tvGenres, err := s.tmdbClient.TVGenres(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Genre refresh failed fetching tv genres")
		return
	}

	merged := catalog.MergeGenres(0, movieGenres, tvGenres)
	if err := s.db.SaveGenres(merged); err != nil {
		s.logger.WithError(err).Error("Failed to persist genre cache")
		return
	}

	s.logger.WithField("count", len(merged)).Info("Genre cache refreshed")
}

// runDownloadPrune deletes finished download records past the retention window
func (s *Scheduler) runDownloadPrune() {
	s.logger.Info("Running scheduled download prune")

	retention := time.Duration(s.retentionDays) * 24 * time.Hour
	pruned, err := s.manager.Prune(retention)
	if err != nil {
		s.logger.WithError(err).Error("Download prune failed")
		return
	}

	s.logger.WithField("pruned", pruned).Info("Download prune completed")
}
