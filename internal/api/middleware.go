package api

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/listenupapp/moviescope/internal/errors"
)

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// gestureLimit is a huma operation middleware that throttles gesture
// endpoints per client IP. It returns 429 with Retry-After when exceeded.
func (s *Server) gestureLimit(ctx huma.Context, next func(huma.Context)) {
	if s.limiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx.RemoteAddr())
	if !s.limiter.Allow(key) {
		s.logger.Warn("gesture rate limit exceeded",
			slog.String("ip", key),
			slog.String("operation", ctx.Operation().OperationID))

		retry := max(1, int(s.limiter.RetryAfter().Round(time.Second)/time.Second))
		ctx.SetHeader("Retry-After", strconv.Itoa(retry))
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many gestures",
			domainerrors.RateLimited("too many gestures, slow down"))
		return
	}

	next(ctx)
}

// clientIP strips the port from a RemoteAddr. middleware.RealIP has
// already replaced it with the forwarded client address when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
