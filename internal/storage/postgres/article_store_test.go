package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/notesignal/article-tracker/internal/article"
)

func TestUpsertInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(
			"https://example.com/a",
			"Foo",
			"2024-03-01",
			"2024-03-01 12:00:00",
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(int64(1), true))

	rec, created, err := store.Upsert(
		context.Background(),
		"https://example.com/a",
		"Foo",
		"2024-03-01",
		"2024-03-01 12:00:00",
	)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(1), rec.ID)
	require.Equal(t, "https://example.com/a", rec.URL)
	require.Equal(t, "Foo", rec.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertConflictUpdatesInPlace(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	// The conflict path reuses the original id and reports created=false.
	mock.ExpectQuery("ON CONFLICT \\(url\\) DO UPDATE").
		WithArgs(
			"https://example.com/a",
			"Foo Updated",
			"2024-03-05",
			"2024-03-05 08:30:00",
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created"}).AddRow(int64(1), false))

	rec, created, err := store.Upsert(
		context.Background(),
		"https://example.com/a",
		"Foo Updated",
		"2024-03-05",
		"2024-03-05 08:30:00",
	)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, int64(1), rec.ID)
	require.Equal(t, "Foo Updated", rec.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRequiresURL(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	_, _, err = store.Upsert(context.Background(), "", "t", "2024-01-01", "2024-01-01 00:00:00")
	require.Error(t, err)
}

func TestListAllOrdersByIDDescending(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "url", "title", "publication_date", "fetched_at"}).
		AddRow(int64(2), "https://example.com/b", "B", "2024-03-02", "2024-03-02 09:00:00").
		AddRow(int64(1), "https://example.com/a", "A", "2024-03-01", "2024-03-01 09:00:00")
	mock.ExpectQuery("ORDER BY id DESC").WillReturnRows(rows)

	articles, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, int64(2), articles[0].ID)
	require.Equal(t, int64(1), articles[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllEmptyStore(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	mock.ExpectQuery("ORDER BY id DESC").
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "title", "publication_date", "fetched_at"}))

	articles, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, articles)
	require.Empty(t, articles)
}

func TestGetTranslatesNoRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	mock.ExpectQuery("WHERE id = \\$1").
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	_, err = store.Get(context.Background(), 42)
	require.True(t, errors.Is(err, article.ErrNotFound))
}

func TestGetReturnsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	mock.ExpectQuery("WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "url", "title", "publication_date", "fetched_at"}).
			AddRow(int64(1), "https://example.com/a", "Foo", "2024-03-01", "2024-03-01 12:00:00"))

	rec, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Foo", rec.Title)
	require.Equal(t, "https://example.com/a", rec.URL)
}

func TestEnsureSchemaCreatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewArticleStoreWithPool(mock, "articles")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewArticleStoreWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewArticleStoreWithPool(mock, "articles; DROP TABLE articles")
	require.Error(t, err)
}
