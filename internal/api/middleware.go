package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gaspardpetit/tasksplit/internal/logx"
)

// maxLoggedBody caps request bodies captured by debug logging.
const maxLoggedBody = 4 << 10

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (lw *loggingResponseWriter) WriteHeader(status int) {
	lw.status = status
	lw.ResponseWriter.WriteHeader(status)
}

func (lw *loggingResponseWriter) Flush() {
	if f, ok := lw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (lw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

// readCloser replays a logged prefix ahead of the unread request body.
type readCloser struct {
	io.Reader
	io.Closer
}

// MiddlewareChain returns the middlewares applied to every route.
func MiddlewareChain() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chiMiddleware.RequestID,
		chiMiddleware.Recoverer,
		requestLogger,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := zerolog.GlobalLevel()
		reqID := chiMiddleware.GetReqID(r.Context())
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		if lvl <= zerolog.DebugLevel && r.Body != nil {
			body, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
			r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), r.Body), Closer: r.Body}
			logx.Log.Debug().Str("request_id", reqID).Str("method", r.Method).Str("url", r.URL.String()).Str("body", logx.Truncate(string(body), maxLoggedBody)).Msg("http request")
		}
		start := time.Now()
		next.ServeHTTP(lrw, r)
		logx.Log.Info().Str("request_id", reqID).Str("method", r.Method).Str("path", r.URL.Path).Int("status", lrw.status).Dur("duration", time.Since(start)).Msg("http")
	})
}
