// Package http exposes the underwriting pipeline over an HTTP API using
// chi routing and render responses.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"uwcli/internal/config"
	apierrors "uwcli/internal/errors"
	"uwcli/internal/infrastructure"
	"uwcli/internal/pipeline"
)

// NewRouter assembles the API router: request ID and trace propagation,
// timeouts, metrics, the underwriting endpoint, health, and the metrics
// scrape endpoint.
func NewRouter(cfg config.ServerConfig, p *pipeline.Pipeline, version string, logger *slog.Logger) chi.Router {
	errorHandler := apierrors.NewErrorHandler(logger)
	metrics := NewMetrics()

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(traceMiddleware)
	r.Use(requestLogger(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(metrics.Middleware("underwrite")).
			Mount("/underwrite", NewUnderwriteHandler(p, logger, errorHandler, metrics).Routes())
	})
	r.Mount("/health", NewHealthHandler(version, logger).Routes())
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// traceMiddleware assigns each request a trace ID, honoring an inbound
// X-Request-ID when present, and echoes it on the response.
func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Request-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", traceID)
		ctx := infrastructure.WithTraceID(r.Context(), traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger emits one structured line per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.InfoContext(r.Context(), "request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
