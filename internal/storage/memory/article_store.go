// Package memory provides an in-memory article store for development/testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/notesignal/article-tracker/internal/article"
)

// ArticleStore implements article.Store with a mutex-guarded map. It honors
// the same contract as the Postgres store: one record per url, ids assigned
// once and never reused, list ordered by id descending.
type ArticleStore struct {
	mu     sync.RWMutex
	byURL  map[string]int64
	byID   map[int64]article.Article
	nextID int64
}

// NewArticleStore constructs an empty ArticleStore.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		byURL:  make(map[string]int64),
		byID:   make(map[int64]article.Article),
		nextID: 1,
	}
}

// Upsert inserts or updates the record for url under the store lock.
func (s *ArticleStore) Upsert(
	_ context.Context,
	url, title, publicationDate, fetchedAt string,
) (article.Article, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := article.Article{
		URL:             url,
		Title:           title,
		PublicationDate: publicationDate,
		FetchedAt:       fetchedAt,
	}
	if id, ok := s.byURL[url]; ok {
		rec.ID = id
		s.byID[id] = rec
		return rec, false, nil
	}
	rec.ID = s.nextID
	s.nextID++
	s.byURL[url] = rec.ID
	s.byID[rec.ID] = rec
	return rec, true, nil
}

// ListAll returns all records, newest id first.
func (s *ArticleStore) ListAll(_ context.Context) ([]article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	articles := make([]article.Article, 0, len(s.byID))
	for _, rec := range s.byID {
		articles = append(articles, rec)
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].ID > articles[j].ID
	})
	return articles, nil
}

// Get fetches a record by id.
func (s *ArticleStore) Get(_ context.Context, id int64) (article.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	return rec, nil
}

// Close is a no-op for the in-memory store.
func (s *ArticleStore) Close() {}
