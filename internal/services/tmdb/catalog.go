package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/amaumene/cinedex/internal/models"
)

// Trending retrieves the trending movie/TV list for the given window
// ("day" or "week"). Person entries are dropped.
func (c *Client) Trending(ctx context.Context, window string, page int) (*models.PageResult, error) {
	if window != "day" && window != "week" {
		window = "day"
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var envelope listEnvelope
	if err := c.get(ctx, "trending", "/trending/all/"+window, params, &envelope); err != nil {
		return nil, err
	}

	return envelope.normalizePage(""), nil
}

// SearchMulti searches movies and TV shows by text. The upstream multi
// endpoint can also return person entries; those never reach the caller.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*models.PageResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var envelope listEnvelope
	if err := c.get(ctx, "search", "/search/multi", params, &envelope); err != nil {
		return nil, err
	}

	return envelope.normalizePage(""), nil
}

// MovieGenres retrieves the movie genre taxonomy
func (c *Client) MovieGenres(ctx context.Context) ([]models.Genre, error) {
	var resp genreListResponse
	if err := c.get(ctx, "movie_genres", "/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// TVGenres retrieves the TV genre taxonomy
func (c *Client) TVGenres(ctx context.Context) ([]models.Genre, error) {
	var resp genreListResponse
	if err := c.get(ctx, "tv_genres", "/genre/tv/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// DiscoverByGenre lists items of one media type filtered by genre.
// Discover results carry no media_type tag, so the requested type is
// applied as the normalization fallback.
func (c *Client) DiscoverByGenre(ctx context.Context, mediaType models.MediaType, genreID, page int) (*models.PageResult, error) {
	if !mediaType.Valid() {
		return nil, &CatalogError{Op: "discover_genre", Err: fmt.Errorf("invalid media type %q", mediaType)}
	}

	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")

	var envelope listEnvelope
	if err := c.get(ctx, "discover_genre", "/discover/"+string(mediaType), params, &envelope); err != nil {
		return nil, err
	}

	return envelope.normalizePage(mediaType), nil
}

// DiscoverByProvider lists items of one media type available on a watch
// provider in a region. The envelope counters are passed through unchanged
// so pagination cursors can rely on them.
func (c *Client) DiscoverByProvider(ctx context.Context, mediaType models.MediaType, providerID int, region string, page int) (*models.PageResult, error) {
	if !mediaType.Valid() {
		return nil, &CatalogError{Op: "discover_provider", Err: fmt.Errorf("invalid media type %q", mediaType)}
	}
	if region == "" {
		region = "US"
	}

	params := url.Values{}
	params.Set("with_watch_providers", strconv.Itoa(providerID))
	params.Set("watch_region", region)
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")

	var envelope listEnvelope
	if err := c.get(ctx, "discover_provider", "/discover/"+string(mediaType), params, &envelope); err != nil {
		return nil, err
	}

	return envelope.normalizePage(mediaType), nil
}

// Details retrieves a single item with its credits and video listings
// embedded in one request
func (c *Client) Details(ctx context.Context, mediaType models.MediaType, id int64) (*models.Details, error) {
	if !mediaType.Valid() {
		return nil, &CatalogError{Op: "details", Err: fmt.Errorf("invalid media type %q", mediaType)}
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,videos")

	var raw rawDetails
	path := fmt.Sprintf("/%s/%d", mediaType, id)
	if err := c.get(ctx, "details", path, params, &raw); err != nil {
		return nil, err
	}

	return raw.normalize(mediaType), nil
}

// Videos retrieves the video listings (trailers, teasers) for a single item
func (c *Client) Videos(ctx context.Context, mediaType models.MediaType, id int64) ([]models.Video, error) {
	if !mediaType.Valid() {
		return nil, &CatalogError{Op: "videos", Err: fmt.Errorf("invalid media type %q", mediaType)}
	}

	var resp videoListResponse
	path := fmt.Sprintf("/%s/%d/videos", mediaType, id)
	if err := c.get(ctx, "videos", path, nil, &resp); err != nil {
		return nil, err
	}

	return normalizeVideos(resp.Results), nil
}
