// Package postgres provides the Postgres-backed article store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notesignal/article-tracker/internal/article"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ArticleStoreConfig controls the Postgres connection pool used for article rows.
type ArticleStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// ArticleStore persists article rows in Postgres. The uniqueness constraint on
// url plus the ON CONFLICT clause make Upsert atomic; the store never does a
// read-then-write check.
type ArticleStore struct {
	pool  pgxPool
	table string
}

// NewArticleStore creates a Postgres-backed ArticleStore using the provided config.
func NewArticleStore(ctx context.Context, cfg ArticleStoreConfig) (*ArticleStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ArticleStore{
		pool:  pool,
		table: table,
	}, nil
}

// NewArticleStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewArticleStoreWithPool(pool pgxPool, table string) (*ArticleStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ArticleStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ArticleStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the articles table if it does not exist. The column
// layout is a compatibility surface shared with downstream readers; do not
// change it without migrating them.
func (s *ArticleStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("article store is not configured")
	}
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	url TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	publication_date TEXT NOT NULL,
	fetched_at TEXT NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// Upsert inserts a row for url or updates the existing one in place. The
// conflict clause resolves concurrent calls for the same URL inside Postgres,
// so callers never see a duplicate-key failure and the id survives updates.
// xmax = 0 distinguishes a fresh insert from a conflict-path update.
func (s *ArticleStore) Upsert(
	ctx context.Context,
	url, title, publicationDate, fetchedAt string,
) (article.Article, bool, error) {
	if s == nil || s.pool == nil {
		return article.Article{}, false, fmt.Errorf("article store is not configured")
	}
	if url == "" {
		return article.Article{}, false, fmt.Errorf("url is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (url, title, publication_date, fetched_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	publication_date = EXCLUDED.publication_date,
	fetched_at = EXCLUDED.fetched_at
RETURNING id, (xmax = 0)`, s.table)

	rec := article.Article{
		URL:             url,
		Title:           title,
		PublicationDate: publicationDate,
		FetchedAt:       fetchedAt,
	}
	var created bool
	err := s.pool.QueryRow(ctx, query, url, title, publicationDate, fetchedAt).
		Scan(&rec.ID, &created)
	if err != nil {
		return article.Article{}, false, fmt.Errorf("upsert article: %w", err)
	}
	return rec, created, nil
}

// ListAll returns every stored article, newest id first.
func (s *ArticleStore) ListAll(ctx context.Context) ([]article.Article, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("article store is not configured")
	}
	query := fmt.Sprintf(`
SELECT id, url, title, publication_date, fetched_at
FROM %s
ORDER BY id DESC`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]article.Article, 0)
	for rows.Next() {
		var rec article.Article
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Title, &rec.PublicationDate, &rec.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		articles = append(articles, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}
	return articles, nil
}

// Get returns the article with the given id, or article.ErrNotFound.
func (s *ArticleStore) Get(ctx context.Context, id int64) (article.Article, error) {
	if s == nil || s.pool == nil {
		return article.Article{}, fmt.Errorf("article store is not configured")
	}
	query := fmt.Sprintf(`
SELECT id, url, title, publication_date, fetched_at
FROM %s
WHERE id = $1`, s.table)

	var rec article.Article
	err := s.pool.QueryRow(ctx, query, id).
		Scan(&rec.ID, &rec.URL, &rec.Title, &rec.PublicationDate, &rec.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return article.Article{}, article.ErrNotFound
	}
	if err != nil {
		return article.Article{}, fmt.Errorf("get article %d: %w", id, err)
	}
	return rec, nil
}
