// Package pipeline implements the fetch → extract → upsert ingestion flow.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/extract"
	"github.com/notesignal/article-tracker/internal/metrics"
)

// FetchError reports a failed network fetch or a non-success response.
// It aborts the ingestion of that URL before anything is written.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// StorageError reports a failed write at the persistence layer.
type StorageError struct {
	URL string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("store %s: %v", e.URL, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Result is the outcome of a successful ingestion.
type Result struct {
	Article article.Article
	Created bool
}

// SnapshotSink optionally persists the raw markup of each successful fetch.
type SnapshotSink interface {
	Store(ctx context.Context, url string, body []byte) (string, error)
}

// Pipeline ingests one article per call. Each call is self-contained; the
// store is the only shared resource and its upsert provides the atomicity.
type Pipeline struct {
	fetcher article.Fetcher
	store   article.Store
	clock   article.Clock
	sink    SnapshotSink
	logger  *zap.Logger
}

// New constructs a Pipeline. sink may be nil to disable raw-markup snapshots.
func New(
	fetcher article.Fetcher,
	store article.Store,
	clock article.Clock,
	snapshots SnapshotSink,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher: fetcher,
		store:   store,
		clock:   clock,
		sink:    snapshots,
		logger:  logger,
	}
}

// Ingest fetches url, extracts its metadata and upserts the article record.
// A fetch failure aborts before any write; extraction never fails and instead
// falls back to the URL as title and the ingestion date as publication date.
func (p *Pipeline) Ingest(ctx context.Context, url string) (Result, error) {
	start := time.Now()
	body, err := p.fetcher.Fetch(ctx, url)
	fetchDuration := time.Since(start)
	if err != nil {
		metrics.ObserveIngest(url, metrics.OutcomeFetchError, fetchDuration)
		p.logger.Warn("ingestion failed",
			zap.String("url", url),
			zap.Duration("fetch_duration", fetchDuration),
			zap.Error(err),
		)
		return Result{}, &FetchError{URL: url, Err: err}
	}

	now := p.clock.Now().UTC()
	meta := extract.Metadata(body)
	title := meta.Title
	if title == "" {
		title = url
	}
	publicationDate := meta.PublicationDate
	if publicationDate == "" {
		publicationDate = now.Format(article.DateLayout)
	}
	fetchedAt := now.Format(article.TimestampLayout)

	rec, created, err := p.store.Upsert(ctx, url, title, publicationDate, fetchedAt)
	if err != nil {
		metrics.ObserveIngest(url, metrics.OutcomeStorageError, fetchDuration)
		p.logger.Error("ingestion failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return Result{}, &StorageError{URL: url, Err: err}
	}

	if p.sink != nil {
		// Snapshot failures are logged, not fatal: the row already holds
		// the metadata this system promises to keep.
		if _, serr := p.sink.Store(ctx, url, body); serr != nil {
			p.logger.Warn("snapshot write failed", zap.String("url", url), zap.Error(serr))
		}
	}

	metrics.ObserveIngest(url, metrics.OutcomeOK, fetchDuration)
	metrics.ObserveUpsert(created)
	p.logger.Info("article ingested",
		zap.Int64("id", rec.ID),
		zap.String("url", rec.URL),
		zap.String("title", rec.Title),
		zap.String("publication_date", rec.PublicationDate),
		zap.Bool("created", created),
		zap.Duration("fetch_duration", fetchDuration),
	)
	return Result{Article: rec, Created: created}, nil
}
