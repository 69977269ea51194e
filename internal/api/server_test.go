package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/query"
	"github.com/notesignal/article-tracker/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.ArticleStore) {
	t.Helper()
	store := memory.NewArticleStore()
	return NewServer(query.New(store), zap.NewNop()), store
}

func seed(t *testing.T, store *memory.ArticleStore, url, title string) article.Article {
	t.Helper()
	rec, _, err := store.Upsert(context.Background(), url, title, "2024-03-01", "2024-03-01 09:00:00")
	require.NoError(t, err)
	return rec
}

func TestListArticlesEmpty(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var articles []article.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Empty(t, articles)
}

func TestListArticlesNewestFirst(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	seed(t, store, "https://example.com/a", "A")
	seed(t, store, "https://example.com/b", "B")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var articles []article.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 2)
	require.Equal(t, "B", articles[0].Title)
	require.Equal(t, "A", articles[1].Title)
}

func TestGetArticleByID(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	seeded := seed(t, store, "https://example.com/a", "A")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got article.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, seeded, got)
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/99", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "article not found", payload["error"])
}

func TestGetArticleRejectsNonNumericID(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardRendersTable(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	seed(t, store, "https://example.com/a", "Structured Notes 101")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Structured Notes 101")
	require.Contains(t, rec.Body.String(), "https://example.com/a")
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
