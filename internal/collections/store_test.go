package collections

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/amaumene/cinedex/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := models.NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewStore(db, logger)
}

func favorite(contentID string) models.CollectionEntry {
	return models.CollectionEntry{
		ContentID:   contentID,
		ContentType: models.MediaTypeMovie,
		Title:       "Movie " + contentID,
	}
}

func TestAddFavoriteIsIdempotentByContentID(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Add(models.CollectionFavorites, favorite("268"))
	require.NoError(t, err)

	updated := favorite("268")
	updated.Title = "Batman (1989)"
	second, err := store.Add(models.CollectionFavorites, updated)
	require.NoError(t, err)

	// Overwrite, not duplicate: same record id, new fields
	assert.Equal(t, first.ID, second.ID)

	entries, err := store.List(models.CollectionFavorites)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Batman (1989)", entries[0].Title)
}

func TestSameContentIDAcrossCollections(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add(models.CollectionFavorites, favorite("268"))
	require.NoError(t, err)
	_, err = store.Add(models.CollectionWatchlist, favorite("268"))
	require.NoError(t, err)

	favorites, err := store.List(models.CollectionFavorites)
	require.NoError(t, err)
	watchlist, err := store.List(models.CollectionWatchlist)
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
	assert.Len(t, watchlist, 1)
}

func TestReviewsNeverDeduplicate(t *testing.T) {
	store := newTestStore(t)

	review := models.CollectionEntry{
		ContentID:   "268",
		ContentType: models.MediaTypeMovie,
		Title:       "Batman",
		Rating:      8,
		ReviewText:  "Still holds up.",
	}

	first, err := store.Add(models.CollectionReviews, review)
	require.NoError(t, err)
	review.Rating = 6
	review.ReviewText = "Rewatched, less impressed."
	second, err := store.Add(models.CollectionReviews, review)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	entries, err := store.List(models.CollectionReviews)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRemoveThenList(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add(models.CollectionWatchlist, favorite("100"))
	require.NoError(t, err)
	_, err = store.Add(models.CollectionWatchlist, favorite("200"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(models.CollectionWatchlist, "100"))

	entries, err := store.List(models.CollectionWatchlist)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "200", entries[0].ContentID)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Remove(models.CollectionFavorites, "does-not-exist"))
	assert.NoError(t, store.RemoveEntry(models.CollectionReviews, "does-not-exist"))
}

func TestRemoveSingleReviewByRecordID(t *testing.T) {
	store := newTestStore(t)

	review := models.CollectionEntry{ContentID: "268", ContentType: models.MediaTypeMovie}
	first, err := store.Add(models.CollectionReviews, review)
	require.NoError(t, err)
	_, err = store.Add(models.CollectionReviews, review)
	require.NoError(t, err)

	require.NoError(t, store.RemoveEntry(models.CollectionReviews, first.ID))

	entries, err := store.List(models.CollectionReviews)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEqual(t, first.ID, entries[0].ID)
}

func TestRejectsUnknownCollectionAndBadEntries(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Add(models.Collection("playlists"), favorite("1"))
	assert.Error(t, err)

	_, err = store.Add(models.CollectionFavorites, models.CollectionEntry{ContentType: models.MediaTypeMovie})
	assert.Error(t, err, "content id is required")

	entry := favorite("1")
	entry.ContentType = "person"
	_, err = store.Add(models.CollectionFavorites, entry)
	assert.Error(t, err)
}

func TestEntriesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := models.NewDatabase(path)
	require.NoError(t, err)
	store := NewStore(db, logger)
	_, err = store.Add(models.CollectionFavorites, favorite("268"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = models.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	entries, err := NewStore(db, logger).List(models.CollectionFavorites)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "268", entries[0].ContentID)
}

func TestConcurrentAddsToSameCollection(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// All goroutines target the same content item
			_, err := store.Add(models.CollectionFavorites, favorite("268"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := store.List(models.CollectionFavorites)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
