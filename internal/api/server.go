// Package api exposes the read HTTP interface for the article tracker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notesignal/article-tracker/internal/article"
	"github.com/notesignal/article-tracker/internal/metrics"
	"github.com/notesignal/article-tracker/internal/query"
)

// Server wires HTTP handlers to the query service. It has no mutation
// endpoints; ingestion happens through the CLI, not over HTTP.
type Server struct {
	router  chi.Router
	queries *query.Service
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(queries *query.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		queries: queries,
		logger:  logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/dashboard", s.dashboard)
	r.Get("/", s.listArticles)
	r.Get("/{id}", s.getArticle)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.queries.ListArticles(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}
	s.writeJSON(w, http.StatusOK, articles)
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "article id must be an integer")
		return
	}
	rec, err := s.queries.GetArticle(r.Context(), id)
	if errors.Is(err, article.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch article")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Tracked Articles</title></head>
<body>
<h1>Tracked Articles</h1>
<table border="1" cellpadding="4">
<tr><th>ID</th><th>Title</th><th>Published</th><th>Fetched</th></tr>
{{range .}}<tr>
<td>{{.ID}}</td>
<td><a href="{{.URL}}">{{.Title}}</a></td>
<td>{{.PublicationDate}}</td>
<td>{{.FetchedAt}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	articles, err := s.queries.ListArticles(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, articles); err != nil {
		s.logger.Error("render dashboard failed", zap.Error(err))
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, duration)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", duration.Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
