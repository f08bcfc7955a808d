package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/navikt/roombook/internal/utils"
)

// RequestLogger writes one access log record per request
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		slog.LogAttrs(r.Context(), level, "http_request",
			slog.String("method", r.Method),
			utils.Attr("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("remote_ip", r.RemoteAddr),
			utils.Attr("query", r.URL.RawQuery),
		)
	})
}

// StreamHeaders keeps event stream connections on plain HTTP/1.1 keep-alive.
// Some proxies break long lived responses when the browser tries HTTP/3.
func StreamHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", "clear")
		w.Header().Set("Connection", "keep-alive")
		next.ServeHTTP(w, r)
	})
}
