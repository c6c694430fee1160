// metrics.go — Prometheus метрики сервиса записей.
// HTTP: sr_http_requests_total, sr_http_request_duration_seconds.
// Бизнес-метрики экспортируются для обновления из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sr_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sr_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики
var (
	// RecordingsTotal — текущее количество аудиофайлов в хранилище.
	RecordingsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sr_recordings_total",
			Help: "Текущее количество записей в хранилище",
		},
	)

	// UploadedBytesTotal — суммарный объём принятых записей.
	UploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sr_uploaded_bytes_total",
			Help: "Суммарный объём загруженных записей в байтах",
		},
	)

	// OperationsTotal — операции над записями по результату.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sr_operations_total",
			Help: "Общее количество операций над записями",
		},
		[]string{"operation", "result"},
	)

	// ValidationFailuresTotal — отклонённые загрузки по коду ошибки.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sr_upload_validation_failures_total",
			Help: "Количество загрузок, отклонённых валидатором",
		},
		[]string{"code"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
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

const recordingsPrefix = "/api/recordings/"

// normalizePath заменяет имя файла в пути на {filename}, чтобы
// кардинальность лейблов не росла с количеством записей.
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	switch path {
	case "/api/recordings", "/api/logs", "/api/health", "/api/openapi.json",
		"/api/maintenance/reconcile", "/metrics":
		return path
	}
	if strings.HasPrefix(path, recordingsPrefix) && len(path) > len(recordingsPrefix) {
		return recordingsPrefix + "{filename}"
	}
	return "other"
}
