package middleware

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/dimitrije/hydra-collections/internal/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

var uuidSegment = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hydra",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hydra",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe wraps the router: every request gets an id and a request-scoped
// logger in its context, and is logged and counted once it completes.
// metrics may be nil.
func Observe(base *zap.Logger, metrics *HTTPMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			reqLogger := base.With(
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			r = r.WithContext(logger.WithContext(r.Context(), reqLogger))

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := strconv.Itoa(ww.status)

			if metrics != nil {
				path := normalizePath(r.URL.Path)
				metrics.duration.WithLabelValues(r.Method, path, status).Observe(elapsed.Seconds())
				metrics.requests.WithLabelValues(r.Method, path, status).Inc()
			}

			fields := []zap.Field{zap.Int("status", ww.status), zap.Duration("duration", elapsed)}
			switch {
			case ww.status >= http.StatusInternalServerError:
				reqLogger.Error("request failed", fields...)
			default:
				reqLogger.Info("request completed", fields...)
			}
		})
	}
}

// normalizePath folds identifiers out of the path to keep label cardinality
// bounded.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return uuidSegment.ReplaceAllString(path, ":id")
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}

// Flush keeps event streams working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
