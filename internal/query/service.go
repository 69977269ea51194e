// Package query is the read-only facade over the article store.
package query

import (
	"context"
	"fmt"

	"github.com/notesignal/article-tracker/internal/article"
)

// Service exposes the read operations consumed by the HTTP layer and the
// alert watcher. It has no mutation capability.
type Service struct {
	store article.Store
}

// New constructs a Service over store.
func New(store article.Store) *Service {
	return &Service{store: store}
}

// ListArticles returns all stored articles, newest id first.
func (s *Service) ListArticles(ctx context.Context) ([]article.Article, error) {
	articles, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// GetArticle returns one article by id. article.ErrNotFound passes through
// unwrapped so callers can translate it to their own not-found signal.
func (s *Service) GetArticle(ctx context.Context, id int64) (article.Article, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return article.Article{}, err
	}
	return rec, nil
}
