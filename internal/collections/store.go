package collections

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/amaumene/cinedex/internal/models"
	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StorageError is a durable-storage failure that survived the retry policy.
// Partial writes are never committed; the persisted collection stays intact.
type StorageError struct {
	Op         string
	Collection models.Collection
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Store owns the three user collections (favorites, watchlist, reviews)
// over durable storage. Writes to the same collection are serialized so
// concurrent add/remove calls never interleave a read-modify-write;
// operations on different collections proceed independently.
type Store struct {
	db     *models.Database
	logger *logrus.Logger

	// one write lock per collection
	locks map[models.Collection]*sync.Mutex
}

// NewStore creates a collection store backed by the given database
func NewStore(db *models.Database, logger *logrus.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		locks: map[models.Collection]*sync.Mutex{
			models.CollectionFavorites: {},
			models.CollectionWatchlist: {},
			models.CollectionReviews:   {},
		},
	}
}

// retryWrite applies the storage retry policy: one immediate retry, then
// the error surfaces to the caller.
func (s *Store) retryWrite(op string, collection models.Collection, fn func() error) error {
	err := retry.Do(fn,
		retry.Attempts(2),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"op":         op,
				"collection": collection,
			}).Warn("Retrying storage write")
		}),
	)
	if err != nil {
		return &StorageError{Op: op, Collection: collection, Err: err}
	}
	return nil
}

// Add stores an entry in a collection and returns the stored record.
//
// For favorites and watchlist the write is an upsert keyed by ContentID:
// adding an item already present overwrites the existing entry instead of
// creating a duplicate. Reviews never deduplicate; every add creates a new
// record with a fresh local id.
func (s *Store) Add(collection models.Collection, entry models.CollectionEntry) (*models.CollectionEntry, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	if entry.ContentID == "" {
		return nil, fmt.Errorf("content ID is required")
	}
	if !entry.ContentType.Valid() {
		return nil, fmt.Errorf("invalid content type %q", entry.ContentType)
	}

	lock := s.locks[collection]
	lock.Lock()
	defer lock.Unlock()

	entry.Collection = collection
	entry.CreatedAt = time.Now()

	if collection == models.CollectionReviews {
		entry.ID = uuid.NewString()
		if err := s.retryWrite("add", collection, func() error {
			return s.db.InsertCollectionEntry(&entry)
		}); err != nil {
			return nil, err
		}
		return &entry, nil
	}

	// Favorites and watchlist hold at most one entry per content item
	existing, err := s.db.FindCollectionEntryByContentID(collection, entry.ContentID)
	if err != nil && !models.IsNotFound(err) {
		return nil, &StorageError{Op: "find", Collection: collection, Err: err}
	}

	if existing != nil {
		entry.ID = existing.ID
		if err := s.retryWrite("update", collection, func() error {
			return s.db.UpdateCollectionEntry(&entry)
		}); err != nil {
			return nil, err
		}
		return &entry, nil
	}

	entry.ID = uuid.NewString()
	if err := s.retryWrite("add", collection, func() error {
		return s.db.InsertCollectionEntry(&entry)
	}); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes every entry of a collection referencing the given content
// item. Removing an absent item is a no-op, not an error; callers do not
// pre-check existence.
func (s *Store) Remove(collection models.Collection, contentID string) error {
	if !collection.Valid() {
		return fmt.Errorf("unknown collection %q", collection)
	}

	lock := s.locks[collection]
	lock.Lock()
	defer lock.Unlock()

	return s.retryWrite("remove", collection, func() error {
		_, err := s.db.DeleteCollectionEntriesByContentID(collection, contentID)
		return err
	})
}

// RemoveEntry deletes a single entry by its local record id. Reviews are
// addressed this way since one content item can carry several of them.
func (s *Store) RemoveEntry(collection models.Collection, entryID string) error {
	if !collection.Valid() {
		return fmt.Errorf("unknown collection %q", collection)
	}

	lock := s.locks[collection]
	lock.Lock()
	defer lock.Unlock()

	err := s.retryWrite("remove_entry", collection, func() error {
		err := s.db.DeleteCollectionEntry(entryID)
		if models.IsNotFound(err) {
			return nil
		}
		return err
	})
	return err
}

// List returns the entries of a collection, newest first. Corrupted stored
// data is treated as an empty collection rather than propagated: the UI can
// always render a list.
func (s *Store) List(collection models.Collection) ([]*models.CollectionEntry, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}

	entries, err := s.db.GetCollectionEntries(collection)
	if err != nil {
		s.logger.WithError(err).WithField("collection", collection).Warn("Failed to read collection, treating as empty")
		return []*models.CollectionEntry{}, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries, nil
}
