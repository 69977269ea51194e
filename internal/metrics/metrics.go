// Package metrics exposes Prometheus collectors for the article tracker.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingestTotal             *prometheus.CounterVec
	fetchDurationSeconds    *prometheus.HistogramVec
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDurationSecs *prometheus.HistogramVec
	alertNewArticlesTotal   prometheus.Counter
	articlesUpsertedTotal   *prometheus.CounterVec

	once sync.Once
)

// Ingestion outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeFetchError   = "fetch_error"
	OutcomeStorageError = "storage_error"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		ingestTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_ingest_total",
				Help: "Total ingestion attempts, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_fetch_duration_seconds",
				Help:    "Histogram of article fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"site"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		)

		alertNewArticlesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_alert_new_articles_total",
				Help: "Total new articles observed by the alert watcher.",
			},
		)

		articlesUpsertedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_articles_upserted_total",
				Help: "Total successful upserts, labeled by created vs updated.",
			},
			[]string{"op"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveIngest records one ingestion attempt and its fetch duration.
// Observers are no-ops until Init has run.
func ObserveIngest(site, outcome string, fetchDuration time.Duration) {
	if ingestTotal == nil {
		return
	}
	sanitized := SanitizeSite(site)
	ingestTotal.WithLabelValues(sanitized, outcome).Inc()
	if fetchDuration > 0 {
		fetchDurationSeconds.WithLabelValues(sanitized).Observe(fetchDuration.Seconds())
	}
}

// ObserveUpsert counts a successful upsert as either a create or an update.
func ObserveUpsert(created bool) {
	if articlesUpsertedTotal == nil {
		return
	}
	op := "updated"
	if created {
		op = "created"
	}
	articlesUpsertedTotal.WithLabelValues(op).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSecs.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveNewArticles adds to the alert watcher's new-article counter.
func ObserveNewArticles(n int) {
	if alertNewArticlesTotal == nil {
		return
	}
	if n > 0 {
		alertNewArticlesTotal.Add(float64(n))
	}
}
