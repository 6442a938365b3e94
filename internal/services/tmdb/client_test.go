package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amaumene/cinedex/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(serverURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &Client{
		baseURL:    serverURL,
		apiKey:     "test-key",
		language:   "en-US",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     logger,
	}
}

func TestSearchMultiFiltersPersonEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/multi", r.URL.Path)
		assert.Equal(t, "batman", r.URL.Query().Get("query"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 268, "media_type": "movie", "title": "Batman", "release_date": "1989-06-23", "vote_average": 7.2},
				{"id": 2287, "media_type": "person", "name": "Christian Bale"},
				{"id": 2098, "media_type": "tv", "name": "Batman", "first_air_date": "1966-01-12"}
			],
			"total_pages": 1,
			"total_results": 3
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SearchMulti(context.Background(), "batman", 1)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.True(t, item.MediaType.Valid())
	}
	assert.Equal(t, models.MediaTypeMovie, result.Items[0].MediaType)
	assert.Equal(t, "Batman", result.Items[0].Title)
	assert.Equal(t, "1989-06-23", result.Items[0].ReleaseDate)
	assert.Equal(t, models.MediaTypeTV, result.Items[1].MediaType)
	assert.Equal(t, "1966-01-12", result.Items[1].ReleaseDate)
}

func TestMediaTypeInferredFromFieldShape(t *testing.T) {
	// Trending entries sometimes omit media_type; the title-vs-name field
	// decides, in one place
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 1, "title": "A Movie", "release_date": "2024-01-01"},
				{"id": 1, "name": "A Show", "first_air_date": "2023-05-05"}
			],
			"total_pages": 1,
			"total_results": 2
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Trending(context.Background(), "day", 1)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, models.MediaTypeMovie, result.Items[0].MediaType)
	assert.Equal(t, models.MediaTypeTV, result.Items[1].MediaType)
	// Same numeric id, different items: both survive
	assert.Equal(t, result.Items[0].ID, result.Items[1].ID)
}

func TestDiscoverByProviderPassesEnvelopeThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "8", r.URL.Query().Get("with_watch_providers"))
		assert.Equal(t, "GB", r.URL.Query().Get("watch_region"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		w.Write([]byte(`{
			"page": 2,
			"results": [{"id": 7, "title": "Seven"}],
			"total_pages": 3,
			"total_results": 55
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.DiscoverByProvider(context.Background(), models.MediaTypeMovie, 8, "GB", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 55, result.TotalResults)
	assert.Equal(t, models.MediaTypeMovie, result.Items[0].MediaType)
}

func TestDiscoverByGenreTagsWithRequestedType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/tv", r.URL.Path)
		assert.Equal(t, "35", r.URL.Query().Get("with_genres"))

		// Discover results have no media_type tag
		w.Write([]byte(`{
			"page": 1,
			"results": [{"id": 100, "name": "Some Sitcom"}],
			"total_pages": 1,
			"total_results": 1
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.DiscoverByGenre(context.Background(), models.MediaTypeTV, 35, 1)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, models.MediaTypeTV, result.Items[0].MediaType)
	assert.Equal(t, "Some Sitcom", result.Items[0].Title)
}

func TestDetailsIncludesCreditsAndVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/268", r.URL.Path)
		assert.Equal(t, "credits,videos", r.URL.Query().Get("append_to_response"))

		w.Write([]byte(`{
			"id": 268,
			"title": "Batman",
			"overview": "The Dark Knight of Gotham City...",
			"runtime": 126,
			"genres": [{"id": 14, "name": "Fantasy"}, {"id": 28, "name": "Action"}],
			"credits": {"cast": [{"id": 2232, "name": "Michael Keaton", "character": "Batman", "order": 0}]},
			"videos": {"results": [{"id": "abc", "key": "dQw4w9WgXcQ", "name": "Trailer", "site": "YouTube", "type": "Trailer"}]}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	details, err := client.Details(context.Background(), models.MediaTypeMovie, 268)
	require.NoError(t, err)

	assert.Equal(t, models.MediaTypeMovie, details.MediaType)
	assert.Equal(t, "Batman", details.Title)
	assert.Equal(t, 126, details.Runtime)
	require.Len(t, details.Cast, 1)
	assert.Equal(t, "Michael Keaton", details.Cast[0].Name)
	require.Len(t, details.Videos, 1)
	assert.Equal(t, "dQw4w9WgXcQ", details.Videos[0].Key)
}

func TestGenreListEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/genre/movie/list":
			w.Write([]byte(`{"genres": [{"id": 28, "name": "Action"}]}`))
		case "/genre/tv/list":
			w.Write([]byte(`{"genres": [{"id": 10759, "name": "Action & Adventure"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	movie, err := client.MovieGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Genre{{ID: 28, Name: "Action"}}, movie)

	tv, err := client.TVGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Genre{{ID: 10759, Name: "Action & Adventure"}}, tv)
}

func TestHTTPFailureSurfacesAsCatalogError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SearchMulti(context.Background(), "batman", 1)

	require.Error(t, err)
	assert.Nil(t, result, "a failed request must not look like an empty result")

	var catalogErr *CatalogError
	require.ErrorAs(t, err, &catalogErr)
	assert.Equal(t, http.StatusTooManyRequests, catalogErr.StatusCode)
}

func TestMalformedResponseSurfacesAsCatalogError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page": 1, "results": [`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Trending(context.Background(), "week", 1)

	var catalogErr *CatalogError
	require.ErrorAs(t, err, &catalogErr)
	assert.Zero(t, catalogErr.StatusCode)
}
