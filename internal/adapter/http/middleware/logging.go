package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/infrastructure/logger"
)

// UserIDHeader carries the operator or system acting on a request.
const UserIDHeader = "X-User-ID"

// RequestLogger stamps the chi request id and acting user onto the request
// context and writes one access line per request. Mount it after chi's RequestID.
func RequestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			ctx := r.Context()
			if id := chimiddleware.GetReqID(ctx); id != "" {
				ctx = logger.ContextWithRequestID(ctx, id)
			}
			if user := r.Header.Get(UserIDHeader); user != "" {
				ctx = logger.ContextWithUserID(ctx, user)
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log := logger.WithContext(ctx, base)
			var event *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				event = log.Error()
			case status == http.StatusAccepted:
				// outcome unknown responses are worth a look from operators
				event = log.Warn()
			default:
				event = log.Info()
			}

			event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(started)).
				Str("remote_addr", r.RemoteAddr).
				Bool("idempotent", r.Header.Get(IdempotencyKeyHeader) != "").
				Msg("request completed")
		})
	}
}
