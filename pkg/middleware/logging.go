package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RequestObserver receives one call per finished request
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// RequestLogger writes one zerolog line per request and reports it to observer,
// which may be nil
func RequestLogger(logger zerolog.Logger, observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			var event *zerolog.Event
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			default:
				event = logger.Info()
			}

			event.
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", elapsed).
				Msg("request completed")

			if observer != nil {
				observer.ObserveRequest(r.Method, route, status, elapsed)
			}
		})
	}
}
