package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/cinedex/internal/collections"
	"github.com/amaumene/cinedex/internal/downloads"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	store   *collections.Store
	manager *downloads.Manager
	logger  *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(store *collections.Store, manager *downloads.Manager, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		store:   store,
		manager: manager,
		logger:  logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	Favorites         int            `json:"favorites"`
	Watchlist         int            `json:"watchlist"`
	Reviews           int            `json:"reviews"`
	TotalDownloads    int            `json:"total_downloads"`
	DownloadsByStatus map[string]int `json:"downloads_by_status"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := StatusResponse{
		DownloadsByStatus: make(map[string]int),
	}

	counts := map[models.Collection]*int{
		models.CollectionFavorites: &response.Favorites,
		models.CollectionWatchlist: &response.Watchlist,
		models.CollectionReviews:   &response.Reviews,
	}
	for collection, target := range counts {
		entries, err := h.store.List(collection)
		if err != nil {
			h.logger.WithError(err).Error("Failed to list collection")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		*target = len(entries)
	}

	records := h.manager.List()
	response.TotalDownloads = len(records)
	for _, record := range records {
		response.DownloadsByStatus[string(record.Status)]++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
