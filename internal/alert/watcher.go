// Package alert polls the article store and reports records newer than a
// persisted watermark.
package alert

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/metrics"
	"github.com/notesignal/article-tracker/internal/query"
)

// Notifier receives each newly observed article. The default logs a line;
// production deployments can plug in email or chat notifications.
type Notifier func(article.Article)

// Watcher owns a file-persisted watermark (the last alerted article id) and
// diffs the store against it on every check.
type Watcher struct {
	queries   *query.Service
	statePath string
	notify    Notifier
	logger    *zap.Logger
}

// NewWatcher constructs a Watcher. notify may be nil, in which case new
// articles are reported through the logger.
func NewWatcher(queries *query.Service, statePath string, notify Notifier, logger *zap.Logger) (*Watcher, error) {
	if statePath == "" {
		return nil, fmt.Errorf("alert state path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		queries:   queries,
		statePath: statePath,
		logger:    logger,
	}
	if notify == nil {
		notify = func(rec article.Article) {
			logger.Info("new article ingested",
				zap.Int64("id", rec.ID),
				zap.String("title", rec.Title),
				zap.String("url", rec.URL),
			)
		}
	}
	w.notify = notify
	return w, nil
}

// Check reports every article with id greater than the watermark, oldest
// first, then advances and persists the watermark. It returns the number of
// new articles seen.
func (w *Watcher) Check(ctx context.Context) (int, error) {
	last, err := w.lastAlertedID()
	if err != nil {
		return 0, err
	}
	articles, err := w.queries.ListArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("alert check: %w", err)
	}

	fresh := articles[:0:0]
	for _, rec := range articles {
		if rec.ID > last {
			fresh = append(fresh, rec)
		}
	}
	// ListArticles is newest-first; alerts go out in ingestion order.
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })

	for _, rec := range fresh {
		w.notify(rec)
		if err := w.setLastAlertedID(rec.ID); err != nil {
			return 0, err
		}
	}
	metrics.ObserveNewArticles(len(fresh))
	if len(fresh) == 0 {
		w.logger.Debug("no new articles since last check")
	}
	return len(fresh), nil
}

// Run polls on a fixed interval until the context is canceled. It performs an
// immediate first check so new deployments do not wait one full interval.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.Check(ctx); err != nil {
		w.logger.Error("alert check failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				w.logger.Error("alert check failed", zap.Error(err))
			}
		}
	}
}

// lastAlertedID reads the watermark. A missing or malformed state file means
// no articles have been alerted yet.
func (w *Watcher) lastAlertedID() (int64, error) {
	data, err := os.ReadFile(w.statePath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read alert state: %w", err)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

func (w *Watcher) setLastAlertedID(id int64) error {
	if err := os.WriteFile(w.statePath, []byte(strconv.FormatInt(id, 10)), 0o600); err != nil {
		return fmt.Errorf("write alert state: %w", err)
	}
	return nil
}
