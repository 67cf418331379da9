package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// InjectLogger stores lg in every request context, tagged with the request
// id when RequestID runs earlier in the chain.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLg := lg
			if id := RequestIDFromContext(r.Context()); id != "" {
				reqLg = lg.With(zap.String("request_id", id))
			}
			next.ServeHTTP(w, r.WithContext(zctx.Base(r.Context(), reqLg)))
		})
	}
}

// LogRequests writes one access log line per request using the logger from
// the request context. Server errors are logged at error level.
func LogRequests() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			r, rctx := withRouteContext(r)
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", routePattern(rctx)),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.code()),
				zap.Int("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
			}
			lg := zctx.From(r.Context())
			if rec.code() >= http.StatusInternalServerError {
				lg.Error("Request", fields...)
				return
			}
			lg.Info("Request", fields...)
		})
	}
}
