package models

import "time"

// CollectionEntry is one record in a user-owned collection (favorite,
// watchlist item, or review).
//
// For favorites and watchlist the logical identity is ContentID: at most
// one entry per content item per collection. Reviews are identified by
// the local record ID only; multiple reviews per content item are valid.
type CollectionEntry struct {
	ID          string     `boltholdKey:"ID" json:"id"`
	Collection  Collection `boltholdIndex:"Collection" json:"collection"`
	ContentID   string     `boltholdIndex:"ContentID" json:"content_id"`
	ContentType MediaType  `json:"content_type"`
	Title       string     `json:"title"`
	PosterPath  string     `json:"poster_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Review-specific fields, zero-valued for favorites and watchlist
	Rating     float64 `json:"rating,omitempty"`
	ReviewText string  `json:"review_text,omitempty"`
}
