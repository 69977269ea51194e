package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/storage/memory"
)

func TestListArticlesEmptyStore(t *testing.T) {
	t.Parallel()

	svc := New(memory.NewArticleStore())
	articles, err := svc.ListArticles(context.Background())
	require.NoError(t, err)
	require.Empty(t, articles)
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	svc := New(memory.NewArticleStore())
	_, err := svc.GetArticle(context.Background(), 7)
	require.True(t, errors.Is(err, article.ErrNotFound))
}

func TestListAndGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := memory.NewArticleStore()
	ctx := context.Background()
	_, _, err := store.Upsert(ctx, "https://example.com/a", "A", "2024-03-01", "2024-03-01 09:00:00")
	require.NoError(t, err)
	_, _, err = store.Upsert(ctx, "https://example.com/b", "B", "2024-03-02", "2024-03-02 09:00:00")
	require.NoError(t, err)

	svc := New(store)
	articles, err := svc.ListArticles(ctx)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, "B", articles[0].Title)

	rec, err := svc.GetArticle(ctx, articles[1].ID)
	require.NoError(t, err)
	require.Equal(t, "A", rec.Title)
}
