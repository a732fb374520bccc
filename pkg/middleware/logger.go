package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/scribeline/transcriber/pkg/requestid"
)

// Logger logs every request once it completes. Health probes and WebSocket
// upgrades are logged at debug level; a subscription stays open for the whole
// job and its "completion" carries no useful latency.
func Logger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger := zap.S().Named("http")
			fields := []any{
				"request_id", requestid.FromRequest(r),
				"method", r.Method,
				"path", path,
				"status", ww.Status(),
				"ip", clientIP(r),
				"user_agent", r.UserAgent(),
				"latency", time.Since(start),
				"response_bytes", ww.BytesWritten(),
			}

			msg := "Request completed"
			switch {
			case ww.Status() >= 500:
				logger.Errorw(msg, fields...)
			case ww.Status() >= 400:
				logger.Warnw(msg, fields...)
			case isQuiet(r):
				logger.Debugw(msg, fields...)
			default:
				logger.Infow(msg, fields...)
			}
		})
	}
}

func isQuiet(r *http.Request) bool {
	if r.Method == http.MethodGet && r.URL.Path == "/health" {
		return true
	}
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
