package models

// CatalogItem is a normalized movie or TV entry from the catalog API.
// Identity is (ID, MediaType); the same numeric id can denote different
// items across media types. Items are immutable once constructed.
type CatalogItem struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	Rating       float64   `json:"rating"`
	Popularity   float64   `json:"popularity"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
}

// Genre is one entry of a genre taxonomy. Identity is ID; a genre with
// the same id in the movie and TV taxonomies is the same entity.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PageResult is one page of a list endpoint, with the upstream envelope
// counters passed through unchanged.
type PageResult struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Items        []CatalogItem `json:"items"`
}

// CastMember is one credit entry embedded in a details response
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

// Video is one video listing (trailer, teaser, clip) for an item
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Details is the full record for a single catalog item, including the
// nested credits and video sub-resources.
type Details struct {
	CatalogItem
	Overview         string       `json:"overview"`
	Tagline          string       `json:"tagline,omitempty"`
	Runtime          int          `json:"runtime,omitempty"`
	NumberOfSeasons  int          `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int          `json:"number_of_episodes,omitempty"`
	Genres           []Genre      `json:"genres"`
	Cast             []CastMember `json:"cast"`
	Videos           []Video      `json:"videos"`
}
