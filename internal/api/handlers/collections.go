package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amaumene/cinedex/internal/collections"
	"github.com/amaumene/cinedex/internal/models"
	"github.com/sirupsen/logrus"
)

// CollectionsHandler serves the user collection endpoints:
//
//	GET    /api/collections/{name}                 list entries
//	POST   /api/collections/{name}                 add an entry
//	DELETE /api/collections/{name}/{contentID}     remove by content id
//	DELETE /api/collections/reviews/entry/{id}     remove one review
type CollectionsHandler struct {
	store  *collections.Store
	logger *logrus.Logger
}

// NewCollectionsHandler creates a new collections handler
func NewCollectionsHandler(store *collections.Store, logger *logrus.Logger) *CollectionsHandler {
	return &CollectionsHandler{store: store, logger: logger}
}

// addRequest is the POST body for adding an entry
type addRequest struct {
	ContentID   string           `json:"content_id"`
	ContentType models.MediaType `json:"content_type"`
	Title       string           `json:"title"`
	PosterPath  string           `json:"poster_path"`
	Rating      float64          `json:"rating"`
	ReviewText  string           `json:"review_text"`
}

func (h *CollectionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/collections/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Collection name required", http.StatusBadRequest)
		return
	}

	collection := models.Collection(parts[0])
	if !collection.Valid() {
		http.Error(w, "Unknown collection", http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		h.list(w, collection)
	case r.Method == http.MethodPost && len(parts) == 1:
		h.add(w, r, collection)
	case r.Method == http.MethodDelete && len(parts) == 3 && parts[1] == "entry":
		h.removeEntry(w, collection, parts[2])
	case r.Method == http.MethodDelete && len(parts) == 2:
		h.remove(w, collection, parts[1])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CollectionsHandler) list(w http.ResponseWriter, collection models.Collection) {
	entries, err := h.store.List(collection)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list collection")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"collection": collection,
		"entries":    entries,
	})
}

func (h *CollectionsHandler) add(w http.ResponseWriter, r *http.Request, collection models.Collection) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	entry, err := h.store.Add(collection, models.CollectionEntry{
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		Title:       req.Title,
		PosterPath:  req.PosterPath,
		Rating:      req.Rating,
		ReviewText:  req.ReviewText,
	})
	if err != nil {
		h.logger.WithError(err).WithField("collection", collection).Error("Failed to add collection entry")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (h *CollectionsHandler) remove(w http.ResponseWriter, collection models.Collection, contentID string) {
	if err := h.store.Remove(collection, contentID); err != nil {
		h.logger.WithError(err).Error("Failed to remove collection entry")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionsHandler) removeEntry(w http.ResponseWriter, collection models.Collection, entryID string) {
	if err := h.store.RemoveEntry(collection, entryID); err != nil {
		h.logger.WithError(err).Error("Failed to remove collection entry")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
