package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/amaumene/cinedex/internal/catalog"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/amaumene/cinedex/internal/services/tmdb"
	"github.com/sirupsen/logrus"
)

// GenresHandler serves the merged movie+TV genre taxonomy. It reads the
// persisted cache first so genre lists keep working while the catalog API
// is unreachable; an empty cache triggers a live fetch.
type GenresHandler struct {
	db         *models.Database
	tmdbClient *tmdb.Client
	logger     *logrus.Logger
}

// NewGenresHandler creates a new genres handler
func NewGenresHandler(db *models.Database, tmdbClient *tmdb.Client, logger *logrus.Logger) *GenresHandler {
	return &GenresHandler{
		db:         db,
		tmdbClient: tmdbClient,
		logger:     logger,
	}
}

// ServeHTTP handles the genres endpoint
func (h *GenresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	genres, updatedAt, err := h.db.GetGenres()
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read genre cache")
	}

	if len(genres) == 0 {
		genres, err = h.fetchAndCache(r.Context())
		if err != nil {
			h.logger.WithError(err).Error("Failed to fetch genres")
			http.Error(w, "Upstream unavailable", http.StatusBadGateway)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"genres":     genres,
		"updated_at": updatedAt,
	})
}

// fetchAndCache pulls both taxonomies, merges them, and persists the result
func (h *GenresHandler) fetchAndCache(ctx context.Context) ([]models.Genre, error) {
	movieGenres, err := h.tmdbClient.MovieGenres(ctx)
	if err != nil {
		return nil, err
	}
	tvGenres, err := h.tmdbClient.TVGenres(ctx)
	if err != nil {
		return nil, err
	}

	merged := catalog.MergeGenres(0, movieGenres, tvGenres)
	if err := h.db.SaveGenres(merged); err != nil {
		h.logger.WithError(err).Warn("Failed to persist genre cache")
	}

	return merged, nil
}
