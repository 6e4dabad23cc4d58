// metrics.go — Prometheus HTTP метрики маркетплейса.
// Регистрирует метрики: bm_http_requests_total, bm_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики маркетплейса
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bm_http_requests_total",
			Help: "Общее количество HTTP-запросов к маркетплейсу",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bm_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к маркетплейсу в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет динамические сегменты пути на плейсхолдеры
// для предотвращения взрывного роста кардинальности метрик.
// /api/v1/books/a1b2c3d4-... → /api/v1/books/{bookId}
// /api/v1/content/Qm... → /api/v1/content/{contentId}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/auth/challenge", "/api/v1/auth/verify", "/api/v1/auth/jwks",
		"/api/v1/books", "/api/v1/purchases":
		return path
	}

	const booksPrefix = "/api/v1/books/"
	if strings.HasPrefix(path, booksPrefix) {
		if strings.HasSuffix(path, "/price") {
			return "/api/v1/books/{bookId}/price"
		}
		return "/api/v1/books/{bookId}"
	}

	const purchasesPrefix = "/api/v1/purchases/"
	if strings.HasPrefix(path, purchasesPrefix) {
		if strings.HasSuffix(path, "/reconcile") {
			return "/api/v1/purchases/{bookId}/reconcile"
		}
		return "/api/v1/purchases/{bookId}"
	}

	if strings.HasPrefix(path, "/api/v1/content/") {
		return "/api/v1/content/{contentId}"
	}

	return path
}
