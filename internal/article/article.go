// Package article defines the domain types and interfaces for tracked articles.
// By keeping the Store and Fetcher contracts here as interfaces, we decouple the
// ingestion pipeline and the read API from any particular database or transport,
// allowing for easier testing and flexibility in the future.
package article

import (
	"context"
	"errors"
	"time"
)

// Canonical string layouts for the persisted date columns. The articles table
// stores both as TEXT, so these formats are part of the compatibility surface.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// ErrNotFound is returned when a lookup by id matches no stored article.
var ErrNotFound = errors.New("article not found")

// Article is the stored record for a single ingested source URL.
type Article struct {
	// ID is the surrogate key assigned by the store on first insert.
	// It is immutable and monotonically increasing in insertion order.
	ID int64 `json:"id"`

	// URL is the natural key; exactly one record exists per distinct URL.
	URL string `json:"url"`

	Title string `json:"title"`

	// PublicationDate is YYYY-MM-DD, extracted from the source markup or
	// falling back to the ingestion date when no date was discoverable.
	PublicationDate string `json:"publication_date"`

	// FetchedAt is the UTC timestamp of the most recent successful
	// ingestion, in YYYY-MM-DD HH:MM:SS form.
	FetchedAt string `json:"fetched_at"`
}

// Metadata is the extractor's best-effort view of a document. An empty field
// means the corresponding element was not found; callers apply the fallbacks.
type Metadata struct {
	Title           string
	PublicationDate string
}

// Store is the durable article table. Upsert must be atomic with respect to
// the uniqueness invariant on url: concurrent calls for the same URL serialize
// inside the storage engine and never produce two records.
type Store interface {
	// Upsert inserts a record for url or, if one exists, updates its title,
	// publication date and fetched-at in place, preserving the id. The
	// returned bool reports whether a new record was created.
	Upsert(ctx context.Context, url, title, publicationDate, fetchedAt string) (Article, bool, error)

	// ListAll returns every record ordered by id descending. An empty store
	// yields an empty slice, not an error.
	ListAll(ctx context.Context) ([]Article, error)

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id int64) (Article, error)

	// Close releases the underlying storage resources.
	Close()
}

// Fetcher retrieves the raw markup for a URL. Implementations apply a single
// bounded attempt; retries belong to an external scheduler, not here.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Clock abstracts wall-clock time so tests can pin ingestion timestamps.
type Clock interface {
	Now() time.Time
}
