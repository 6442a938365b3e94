package catalog

import (
	"context"
	"sync"

	"github.com/amaumene/cinedex/internal/models"
)

// Query identifies one pagination sequence against the catalog. Changing
// any field means a different sequence and requires a reset.
type Query struct {
	Search     string
	GenreID    int
	ProviderID int
	Region     string
	MediaType  models.MediaType
}

// PageFetcher fetches one page for a query. The catalog client's paginated
// operations (search, trending, discover) are adapted into this shape.
type PageFetcher func(ctx context.Context, query Query, page int) (*models.PageResult, error)

// State is a snapshot of a cursor's accumulated results
type State struct {
	Query        Query
	Page         int
	TotalPages   int
	TotalResults int
	Items        []models.CatalogItem
}

type itemKey struct {
	id        int64
	mediaType models.MediaType
}

// Cursor accumulates pages of a filtered catalog query in server order.
//
// At most one fetch is in flight per cursor: a FetchNext issued while a
// prior fetch is unresolved returns the current state unchanged. Reset
// bumps a generation counter, so a late result from a superseded fetch is
// discarded instead of being appended to the new query's items. A failed
// fetch commits nothing; the cursor stays retryable at the same page.
type Cursor struct {
	fetch PageFetcher

	mu           sync.Mutex
	query        Query
	page         int
	totalPages   int
	totalResults int
	items        []models.CatalogItem
	seen         map[itemKey]struct{}
	inFlight     bool
	generation   uint64
}

// NewCursor creates a cursor backed by the given page fetcher
func NewCursor(fetch PageFetcher) *Cursor {
	return &Cursor{
		fetch: fetch,
		seen:  make(map[itemKey]struct{}),
	}
}

// State returns a snapshot of the accumulated results
func (c *Cursor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Cursor) snapshotLocked() State {
	items := make([]models.CatalogItem, len(c.items))
	copy(items, c.items)
	return State{
		Query:        c.query,
		Page:         c.page,
		TotalPages:   c.totalPages,
		TotalResults: c.totalResults,
		Items:        items,
	}
}

// ResetAndFetch clears the accumulated state and fetches page 1 of the
// given query, replacing the item list. Any in-flight fetch for the
// previous query is invalidated: its result will be discarded when it
// arrives.
func (c *Cursor) ResetAndFetch(ctx context.Context, query Query) (State, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.inFlight = true
	c.mu.Unlock()

	result, err := c.fetch(ctx, query, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		// Superseded by a newer reset; drop the result
		return c.snapshotLocked(), nil
	}
	c.inFlight = false

	if err != nil {
		return c.snapshotLocked(), err
	}

	c.query = query
	c.page = 1
	c.totalPages = result.TotalPages
	c.totalResults = result.TotalResults
	c.items = nil
	c.seen = make(map[itemKey]struct{})
	c.appendLocked(result.Items)

	return c.snapshotLocked(), nil
}

// FetchNext fetches the page after the last committed one and appends its
// items. It is a no-op returning the current state when all pages are
// loaded, no query has been set, or another fetch is already in flight.
func (c *Cursor) FetchNext(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.inFlight || c.page == 0 || c.page >= c.totalPages {
		state := c.snapshotLocked()
		c.mu.Unlock()
		return state, nil
	}

	gen := c.generation
	query := c.query
	nextPage := c.page + 1
	c.inFlight = true
	c.mu.Unlock()

	result, err := c.fetch(ctx, query, nextPage)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		// A reset happened while the fetch was in flight
		return c.snapshotLocked(), nil
	}
	c.inFlight = false

	if err != nil {
		// Nothing committed; the cursor retries the same page next time
		return c.snapshotLocked(), err
	}

	c.page = nextPage
	c.appendLocked(result.Items)

	return c.snapshotLocked(), nil
}

// appendLocked concatenates items in server order, dropping any whose
// (id, media type) is already accumulated. The remote service can return
// an item on two adjacent pages while its ordering shifts.
func (c *Cursor) appendLocked(items []models.CatalogItem) {
	for _, item := range items {
		key := itemKey{id: item.ID, mediaType: item.MediaType}
		if _, ok := c.seen[key]; ok {
			continue
		}
		c.seen[key] = struct{}{}
		c.items = append(c.items, item)
	}
}
