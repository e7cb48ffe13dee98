package route

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"stellarbot/src-server/metric"

	"github.com/go-chi/chi/v5/middleware"
)

// AuthMiddleware rejects requests whose Authorization header isn't the
// site's secret. An empty secret rejects everything.
func AuthMiddleware(siteName, secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		given := r.Header.Get("Authorization")
		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			metric.VotesRejected.WithLabelValues(siteName, "unauthorized").Inc()
			slog.Warn("rejected vote with bad authorization", "site", siteName, "remote", r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// RequestLogger logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
