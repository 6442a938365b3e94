package models

// MediaType represents the type of a catalog item (movie or tv show)
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether the media type is one of the two known kinds.
// The catalog's multi-search endpoint can also return person entries,
// which are dropped at the normalization boundary.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// Collection identifies one of the user-owned record sets
type Collection string

const (
	CollectionFavorites Collection = "favorites"
	CollectionWatchlist Collection = "watchlist"
	CollectionReviews   Collection = "reviews"
)

// Valid reports whether the collection name is known
func (c Collection) Valid() bool {
	switch c {
	case CollectionFavorites, CollectionWatchlist, CollectionReviews:
		return true
	}
	return false
}

// DownloadStatus represents the lifecycle state of a download record
type DownloadStatus string

const (
	DownloadQueued     DownloadStatus = "queued"
	DownloadInProgress DownloadStatus = "in_progress"
	DownloadCompleted  DownloadStatus = "completed"
	DownloadFailed     DownloadStatus = "failed"
)
