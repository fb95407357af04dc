// Package middleware provides HTTP middleware for the widget server.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDMiddleware adds a unique request ID to each request, honoring an
// X-Request-ID header supplied by the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs requests and responses
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			wrapper := newResponseWrapper(w)

			log.Info("Request received", map[string]interface{}{
				"request_id":  GetRequestID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			})

			next.ServeHTTP(wrapper, r)

			log.Info("Response sent", map[string]interface{}{
				"request_id":     GetRequestID(r.Context()),
				"method":         r.Method,
				"path":           r.URL.Path,
				"status":         wrapper.statusCode,
				"duration_ms":    time.Since(startTime).Milliseconds(),
				"content_type":   wrapper.Header().Get("Content-Type"),
				"content_length": wrapper.contentLength,
			})
		})
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// responseWrapper wraps http.ResponseWriter to capture the status code and
// body size for logging.
type responseWrapper struct {
	http.ResponseWriter
	statusCode    int
	contentLength int64
}

func newResponseWrapper(w http.ResponseWriter) *responseWrapper {
	return &responseWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code
func (rw *responseWrapper) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write captures the content length
func (rw *responseWrapper) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.contentLength += int64(n)
	return n, err
}
