package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/amaumene/cinedex/internal/downloads"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/sirupsen/logrus"
)

// DownloadsHandler serves the download tracking endpoints:
//
//	GET  /api/downloads              list records
//	POST /api/downloads              start a download
//	GET  /api/downloads/{id}         one record with progress
//	POST /api/downloads/{id}/retry   retry a failed download
type DownloadsHandler struct {
	manager *downloads.Manager
	logger  *logrus.Logger
}

// NewDownloadsHandler creates a new downloads handler
func NewDownloadsHandler(manager *downloads.Manager, logger *logrus.Logger) *DownloadsHandler {
	return &DownloadsHandler{manager: manager, logger: logger}
}

// startRequest is the POST body for starting a download
type startRequest struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	MediaType  models.MediaType `json:"media_type"`
	PosterPath string           `json:"poster_path"`
	SourceURL  string           `json:"source_url"`
}

// recordResponse wraps a record with its derived progress fields
type recordResponse struct {
	*models.DownloadRecord
	Percent *float64 `json:"percent,omitempty"`
}

func toResponse(record *models.DownloadRecord) recordResponse {
	resp := recordResponse{DownloadRecord: record}
	if percent, ok := record.Percent(); ok {
		resp.Percent = &percent
	}
	return resp
}

func (h *DownloadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/downloads"), "/")
	parts := strings.Split(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.list(w)
	case rest == "" && r.Method == http.MethodPost:
		h.start(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, parts[0])
	case len(parts) == 2 && parts[1] == "retry" && r.Method == http.MethodPost:
		h.retry(w, parts[0])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DownloadsHandler) list(w http.ResponseWriter) {
	records := h.manager.List()
	responses := make([]recordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toResponse(record))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"downloads": responses})
}

func (h *DownloadsHandler) get(w http.ResponseWriter, id string) {
	record, ok := h.manager.Get(id)
	if !ok {
		http.Error(w, "Download not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toResponse(record))
}

func (h *DownloadsHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	record, err := h.manager.Start(downloads.Request{
		ID:         req.ID,
		Title:      req.Title,
		MediaType:  req.MediaType,
		PosterPath: req.PosterPath,
		SourceURL:  req.SourceURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, downloads.ErrDownloadInProgress), errors.Is(err, downloads.ErrAlreadyDownloaded):
			// User-facing signal, not a server fault
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(toResponse(record))
}

func (h *DownloadsHandler) retry(w http.ResponseWriter, id string) {
	record, err := h.manager.Retry(id)
	if err != nil {
		if errors.Is(err, downloads.ErrNotRetryable) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(toResponse(record))
}
