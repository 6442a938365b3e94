package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return err == bolthold.ErrNotFound
}

// Collection entry operations

// InsertCollectionEntry stores a new collection entry under its record ID
func (db *Database) InsertCollectionEntry(entry *CollectionEntry) error {
	return db.store.Insert(entry.ID, entry)
}

// UpdateCollectionEntry overwrites an existing collection entry
func (db *Database) UpdateCollectionEntry(entry *CollectionEntry) error {
	return db.store.Update(entry.ID, entry)
}

// GetCollectionEntries retrieves all entries of one collection
func (db *Database) GetCollectionEntries(collection Collection) ([]*CollectionEntry, error) {
	var entries []*CollectionEntry
	err := db.store.Find(&entries, bolthold.Where("Collection").Eq(collection))
	return entries, err
}

// FindCollectionEntryByContentID retrieves the entry of a collection for one
// content item, or bolthold.ErrNotFound
func (db *Database) FindCollectionEntryByContentID(collection Collection, contentID string) (*CollectionEntry, error) {
	var entry CollectionEntry
	err := db.store.FindOne(&entry,
		bolthold.Where("Collection").Eq(collection).
			And("ContentID").Eq(contentID))
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteCollectionEntriesByContentID deletes every entry of a collection that
// references the given content item. Returns the number of deleted entries.
func (db *Database) DeleteCollectionEntriesByContentID(collection Collection, contentID string) (int, error) {
	var entries []*CollectionEntry
	err := db.store.Find(&entries,
		bolthold.Where("Collection").Eq(collection).
			And("ContentID").Eq(contentID))
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if err := db.store.Delete(entry.ID, &CollectionEntry{}); err != nil {
			return 0, err
		}
	}

	return len(entries), nil
}

// DeleteCollectionEntry deletes a single entry by record ID
func (db *Database) DeleteCollectionEntry(id string) error {
	return db.store.Delete(id, &CollectionEntry{})
}

// Download record operations

// SaveDownloadRecord creates or overwrites a download record
func (db *Database) SaveDownloadRecord(record *DownloadRecord) error {
	return db.store.Upsert(record.ID, record)
}

// GetDownloadRecord retrieves a download record by ID
func (db *Database) GetDownloadRecord(id string) (*DownloadRecord, error) {
	var record DownloadRecord
	err := db.store.Get(id, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAllDownloadRecords retrieves all download records
func (db *Database) GetAllDownloadRecords() ([]*DownloadRecord, error) {
	var records []*DownloadRecord
	err := db.store.Find(&records, nil)
	return records, err
}

// DeleteDownloadRecord deletes a download record by ID
func (db *Database) DeleteDownloadRecord(id string) error {
	return db.store.Delete(id, &DownloadRecord{})
}

// Genre cache operations

// genreCache is the single persisted snapshot of the merged genre taxonomy,
// kept so genre lists can be served while the catalog API is unreachable.
type genreCache struct {
	Genres    []Genre
	UpdatedAt time.Time
}

const genreCacheKey = "genres"

// SaveGenres persists the merged genre list
func (db *Database) SaveGenres(genres []Genre) error {
	return db.store.Upsert(genreCacheKey, &genreCache{
		Genres:    genres,
		UpdatedAt: time.Now(),
	})
}

// GetGenres retrieves the cached merged genre list; an empty slice and the
// zero time mean no cache has been written yet
func (db *Database) GetGenres() ([]Genre, time.Time, error) {
	var cache genreCache
	err := db.store.Get(genreCacheKey, &cache)
	if err == bolthold.ErrNotFound {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return cache.Genres, cache.UpdatedAt, nil
}
