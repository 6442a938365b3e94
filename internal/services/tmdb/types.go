package tmdb

import "github.com/amaumene/cinedex/internal/models"

// listEnvelope is the common TMDB list response shape
type listEnvelope struct {
	Page         int       `json:"page"`
	Results      []rawItem `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

// rawItem is a single result entry before normalization. Movie-shaped
// entries carry title/release_date, TV-shaped entries name/first_air_date;
// multi-search additionally tags entries with media_type (including
// "person", which is dropped).
type rawItem struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	GenreIDs     []int   `json:"genre_ids"`
}

// normalize converts a raw entry into a tagged CatalogItem. The media type
// is decided here, once: the upstream media_type tag wins when present,
// otherwise the title-vs-name field shape decides, otherwise the fallback
// (set by endpoints like discover whose results are single-typed). Entries
// that are neither movie nor tv shaped (persons) are dropped.
func (r rawItem) normalize(fallback models.MediaType) (models.CatalogItem, bool) {
	mediaType := models.MediaType(r.MediaType)
	if !mediaType.Valid() {
		if r.MediaType != "" {
			// Explicitly tagged as something else, e.g. a person entry
			return models.CatalogItem{}, false
		}
		switch {
		case r.Title != "":
			mediaType = models.MediaTypeMovie
		case r.Name != "":
			mediaType = models.MediaTypeTV
		case fallback.Valid():
			mediaType = fallback
		default:
			return models.CatalogItem{}, false
		}
	}

	item := models.CatalogItem{
		ID:           r.ID,
		MediaType:    mediaType,
		Rating:       r.VoteAverage,
		Popularity:   r.Popularity,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		GenreIDs:     r.GenreIDs,
	}

	switch {
	case mediaType == models.MediaTypeMovie && r.Title != "":
		item.Title = r.Title
		item.ReleaseDate = r.ReleaseDate
	case mediaType == models.MediaTypeTV && r.Name != "":
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
	case r.Title != "":
		item.Title = r.Title
		item.ReleaseDate = r.ReleaseDate
	default:
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
	}

	return item, true
}

// normalizePage converts an envelope into a PageResult, preserving the
// upstream counters unchanged and dropping non movie/tv entries
func (e *listEnvelope) normalizePage(fallback models.MediaType) *models.PageResult {
	items := make([]models.CatalogItem, 0, len(e.Results))
	for _, raw := range e.Results {
		if item, ok := raw.normalize(fallback); ok {
			items = append(items, item)
		}
	}

	return &models.PageResult{
		Page:         e.Page,
		TotalPages:   e.TotalPages,
		TotalResults: e.TotalResults,
		Items:        items,
	}
}

// genreListResponse is the /genre/{movie,tv}/list response shape
type genreListResponse struct {
	Genres []models.Genre `json:"genres"`
}

// rawDetails is a flat detail response with credits and videos appended
type rawDetails struct {
	rawItem
	Overview         string         `json:"overview"`
	Tagline          string         `json:"tagline"`
	Runtime          int            `json:"runtime"`
	NumberOfSeasons  int            `json:"number_of_seasons"`
	NumberOfEpisodes int            `json:"number_of_episodes"`
	Genres           []models.Genre `json:"genres"`
	Credits          struct {
		Cast []rawCastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []rawVideo `json:"results"`
	} `json:"videos"`
}

type rawCastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type rawVideo struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type videoListResponse struct {
	ID      int64      `json:"id"`
	Results []rawVideo `json:"results"`
}

func (d *rawDetails) normalize(mediaType models.MediaType) *models.Details {
	item, _ := d.rawItem.normalize(mediaType)
	// Detail endpoints are type-addressed, the request path is authoritative
	item.MediaType = mediaType

	details := &models.Details{
		CatalogItem:      item,
		Overview:         d.Overview,
		Tagline:          d.Tagline,
		Runtime:          d.Runtime,
		NumberOfSeasons:  d.NumberOfSeasons,
		NumberOfEpisodes: d.NumberOfEpisodes,
		Genres:           d.Genres,
		Cast:             make([]models.CastMember, 0, len(d.Credits.Cast)),
		Videos:           normalizeVideos(d.Videos.Results),
	}

	for _, c := range d.Credits.Cast {
		details.Cast = append(details.Cast, models.CastMember{
			ID:          c.ID,
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
			Order:       c.Order,
		})
	}

	return details
}

func normalizeVideos(raw []rawVideo) []models.Video {
	videos := make([]models.Video, 0, len(raw))
	for _, v := range raw {
		videos = append(videos, models.Video{
			ID:   v.ID,
			Key:  v.Key,
			Name: v.Name,
			Site: v.Site,
			Type: v.Type,
		})
	}
	return videos
}
